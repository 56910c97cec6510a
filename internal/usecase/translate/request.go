package translate

import (
	"context"
	"sync"
)

// requestManager pairs a monotonically increasing request generation with
// the in-flight cancellation handle. Only the latest generation may ever
// write results back into state; the generation check runs at every
// completion point in addition to cooperative cancellation, so a superseded
// request is discarded even when its context never fired.
type requestManager struct {
	mu          sync.Mutex
	gen         uint64
	cancel      context.CancelFunc
	staleBumped bool
}

// Abort cancels any in-flight request. markStale additionally bumps the
// generation so that a late resolution is ignored without a new request
// having to start first (teardown relies on this).
func (m *requestManager) Abort(markStale bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortLocked(markStale)
}

func (m *requestManager) abortLocked(markStale bool) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if markStale {
		m.gen++
		m.staleBumped = true
	}
}

// Start supersedes any in-flight request and returns the new request's
// generation and context. The generation advances exactly once per
// supersession, whether it happened via Abort(true) or here.
func (m *requestManager) Start() (uint64, context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortLocked(false)
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	if m.staleBumped {
		m.staleBumped = false
	} else {
		m.gen++
	}
	return m.gen, ctx
}

// IsStale reports whether the request identified by gen/ctx may no longer
// touch state.
func (m *requestManager) IsStale(gen uint64, ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ctx.Err() != nil || gen != m.gen
}

// ClearInFlight releases the cancellation handle after the request with the
// given generation settled. A no-op when a newer request already owns the
// handle.
func (m *requestManager) ClearInFlight(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
