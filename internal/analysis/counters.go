package analysis

import "sync/atomic"

// Counters tracks pipeline activity for cache-hit-rate accounting. It is
// injected into the analyzer rather than living as package-level state, so
// tests get isolated counts. Process-scoped, reset on restart.
type Counters struct {
	CacheHits       atomic.Int64
	CacheMisses     atomic.Int64
	GatewayCalls    atomic.Int64
	GatewayFailures atomic.Int64
	VarietyFailures atomic.Int64
}

// CounterSnapshot is a point-in-time copy of the counters.
type CounterSnapshot struct {
	CacheHits       int64 `json:"cacheHits"`
	CacheMisses     int64 `json:"cacheMisses"`
	GatewayCalls    int64 `json:"gatewayCalls"`
	GatewayFailures int64 `json:"gatewayFailures"`
	VarietyFailures int64 `json:"varietyFailures"`
}

func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		CacheHits:       c.CacheHits.Load(),
		CacheMisses:     c.CacheMisses.Load(),
		GatewayCalls:    c.GatewayCalls.Load(),
		GatewayFailures: c.GatewayFailures.Load(),
		VarietyFailures: c.VarietyFailures.Load(),
	}
}
