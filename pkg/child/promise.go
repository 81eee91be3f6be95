package child

import (
	"context"
	"sync"
)

// promise hands one Status from the streamer to any number of waiters.
// Only the first resolve takes effect.
type promise struct {
	once   sync.Once
	done   chan struct{}
	status Status
	err    error
}

func newPromise() *promise {
	return &promise{done: make(chan struct{})}
}

// resolve stores the result and wakes waiters. It reports whether this call
// was the one that resolved the promise.
func (p *promise) resolve(status Status, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.status = status
		p.err = err
		close(p.done)
		resolved = true
	})
	return resolved
}

func (p *promise) wait(ctx context.Context) (Status, error) {
	if p.resolved() {
		return p.status, p.err
	}
	select {
	case <-p.done:
		return p.status, p.err
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (p *promise) resolved() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
