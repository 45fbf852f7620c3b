package store

import (
	"context"
	"sync"
)

// Pending is the outcome of one background persistence write. Callers may ignore it.
type Pending struct {
	id       string
	done     chan struct{}
	once     sync.Once
	err      error
	rejected bool
}

func newPending(id string) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

func completed(id string, err error) *Pending {
	p := newPending(id)
	p.complete(err)
	return p
}

// refused is a mutation the store turned down before touching memory or the backend.
func refused(id string, err error) *Pending {
	p := newPending(id)
	p.rejected = true
	p.complete(err)
	return p
}

func (p *Pending) complete(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// ID is the id of the record the write targets.
func (p *Pending) ID() string { return p.id }

// Rejected reports whether the mutation was refused outright, for example a duplicate id or a
// closed store. Err then holds the reason. A rejected mutation is never persisted.
func (p *Pending) Rejected() bool { return p.rejected }

// Done is closed once the write has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err returns the write error, or nil while the write is still running.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the write finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitIf waits only when wait is set, for callers that let the client choose. A rejected
// mutation reports its error either way.
func (p *Pending) WaitIf(ctx context.Context, wait bool) error {
	if p.rejected {
		return p.err
	}
	if !wait {
		return nil
	}
	return p.Wait(ctx)
}
