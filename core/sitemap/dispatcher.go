package sitemap

import (
	"sync"

	"go.uber.org/zap"
)

// ReasonTouchedFile is the touch reason used for file change batches.
const ReasonTouchedFile = "touched_file"

// SignalKind identifies a rebuild signal.
type SignalKind string

const (
	// SignalTouched marks the resource list stale.
	SignalTouched SignalKind = "touched"
	// SignalRebuildRequested asks for an immediate rebuild.
	SignalRebuildRequested SignalKind = "rebuild_requested"
)

// Signal is emitted for every request forwarded to the Owner.
type Signal struct {
	Kind   SignalKind
	Reason string
}

// Dispatcher decides which rebuild requests reach the Owner.
type Dispatcher struct {
	owner  Owner
	gate   *ReadinessGate
	host   Host
	logger *zap.Logger

	mu        sync.RWMutex
	observers []func(Signal)
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(owner Owner, gate *ReadinessGate, host Host, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		owner:  owner,
		gate:   gate,
		host:   host,
		logger: logger,
	}
}

// Observe registers a function called with every emitted signal.
func (d *Dispatcher) Observe(fn func(Signal)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// RequestTouch marks the resource list stale. It is never suppressed.
func (d *Dispatcher) RequestTouch(reason string) {
	d.emit(Signal{Kind: SignalTouched, Reason: reason})
	d.owner.RebuildResourceList(reason)
}

// RequestRebuildIfNeeded forces a rebuild unless the host is still starting
// or running a batch build.
func (d *Dispatcher) RequestRebuildIfNeeded() error {
	if d.gate.WaitingForReady() {
		d.logger.Debug("Eager rebuild deferred until ready")
		return nil
	}
	if d.host.IsBuild() {
		d.logger.Debug("Eager rebuild left to build driver")
		return nil
	}

	d.emit(Signal{Kind: SignalRebuildRequested})
	return d.owner.EnsureResourceListUpdated()
}

func (d *Dispatcher) emit(s Signal) {
	d.mu.RLock()
	observers := make([]func(Signal), len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, fn := range observers {
		fn(s)
	}
}

// forceRebuild rebuilds regardless of readiness or build mode.
func (d *Dispatcher) forceRebuild() error {
	d.emit(Signal{Kind: SignalRebuildRequested})
	return d.owner.EnsureResourceListUpdated()
}
