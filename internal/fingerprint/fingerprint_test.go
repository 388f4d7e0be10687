package fingerprint

import "testing"

func TestSumDeterministic(t *testing.T) {
	data := []byte("lanzones fruit photo bytes")

	a := Sum(data)
	b := Sum(data)

	if a != b {
		t.Fatalf("same input produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d: %s", len(a), a)
	}
}

func TestSumDistinctInputs(t *testing.T) {
	a := Sum([]byte("image-a"))
	b := Sum([]byte("image-b"))

	if a == b {
		t.Fatalf("distinct inputs collided: %s", a)
	}
}

func TestSumEmptyInput(t *testing.T) {
	// Empty input is still deterministic; rejecting it is the pipeline's job.
	a := Sum(nil)
	b := Sum([]byte{})

	if a != b {
		t.Fatalf("nil and empty slice fingerprints differ: %s vs %s", a, b)
	}
}

func TestShort(t *testing.T) {
	f := Sum([]byte("x"))
	if got := f.Short(); len(got) != 12 {
		t.Fatalf("expected 12-char prefix, got %q", got)
	}
}
