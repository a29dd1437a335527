package sitemap

import "sync/atomic"

// ReadinessGate tracks whether the host has finished starting up.
// It starts out waiting and can only move to ready.
type ReadinessGate struct {
	ready atomic.Bool
}

// NewReadinessGate creates a gate in the waiting state.
func NewReadinessGate() *ReadinessGate {
	return &ReadinessGate{}
}

// WaitingForReady reports whether the host has not signalled readiness yet.
func (g *ReadinessGate) WaitingForReady() bool {
	return !g.ready.Load()
}

// MarkReady moves the gate to ready. It returns true only for the call that
// performed the transition; repeated calls are tolerated.
func (g *ReadinessGate) MarkReady() bool {
	return g.ready.CompareAndSwap(false, true)
}
