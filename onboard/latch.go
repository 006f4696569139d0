package onboard

import (
	"context"
	"sync"
)

// Latch is a two-state signal set by one goroutine and observed, and
// possibly cleared, by another. Wait blocks until the latch is set. The
// armed and fire-request signals of the turret are latches: "armed" is
// level triggered and cleared by explicit disarm, "fire" is edge triggered
// and consumed by the state machine itself.
type Latch struct {
	mu  sync.Mutex
	set bool
	ch  chan struct{} // closed while set
}

func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

func (l *Latch) Set() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.set {
		l.set = true
		close(l.ch)
	}
}

func (l *Latch) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		l.set = false
		l.ch = make(chan struct{})
	}
}

func (l *Latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Wait blocks until the latch is set or ctx is done. Returns nil as soon as
// the latch was observed set.
func (l *Latch) Wait(ctx context.Context) error {
	l.mu.Lock()
	set, ch := l.set, l.ch
	l.mu.Unlock()
	if set {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
