package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
)

const DefaultTimeout = 10 * time.Second

// Dispatcher runs fire-and-forget work after the request that triggered it
// has returned. Failures are logged and never reach the caller.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{timeout: timeout}
}

func (d *Dispatcher) Go(ctx context.Context, name string, fn func(context.Context) error) {
	l := logging.FromContext(ctx).With("task", name)
	base := logging.IntoContext(context.WithoutCancel(ctx), l)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.Error("background task panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			l.Warn("background task failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			return
		}
		l.Debug("background task done", "duration_ms", time.Since(start).Milliseconds())
	}()
}

// Wait blocks until every started task finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
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
