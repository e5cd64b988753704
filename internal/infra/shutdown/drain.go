package shutdown

import (
	"context"
	"sync"
)

// Drain tracks in-flight work through tokens. Wait returns once every
// token handed out has been released.
//
// The caller should keep one token of its own and release it when it
// starts draining, so Wait cannot return before shutdown begins.
type Drain struct {
	wg sync.WaitGroup
}

// NewDrain creates an empty drain.
func NewDrain() *Drain {
	return &Drain{}
}

// Token registers one unit of in-flight work.
func (d *Drain) Token() *Token {
	d.wg.Add(1)
	return &Token{d: d}
}

// Wait blocks until all tokens are released or ctx is done.
func (d *Drain) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Token is released exactly once; further calls are no-ops.
type Token struct {
	d    *Drain
	once sync.Once
}

// Release returns the token to its drain.
func (t *Token) Release() {
	t.once.Do(t.d.wg.Done)
}
