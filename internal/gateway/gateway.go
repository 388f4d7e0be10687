// Package gateway abstracts the single call this system makes to an external
// multimodal inference engine: submit an image plus a prompt, get raw text
// back. Provider failures are translated into a stable, typed taxonomy so the
// rest of the system never handles raw provider errors.
package gateway

import (
	"context"
	"fmt"
)

// Gateway is the one external inference call. Stateless from the caller's
// point of view: no streaming, no conversation.
type Gateway interface {
	Submit(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
}

// Kind is the stable, user-presentable failure category.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuth
	KindRateLimited
	KindOverloaded
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindOverloaded:
		return "overloaded"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error wraps a provider failure with its classified Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gateway %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
