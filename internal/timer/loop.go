package timer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopClosed is returned when work is posted after the loop has exited.
var ErrLoopClosed = errors.New("timer loop closed")

// Loop serializes every controller call and tick onto one goroutine.
// It implements Scheduler with real tickers.
type Loop struct {
	tasks    chan func(context.Context)
	done     chan struct{}
	doneOnce sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(context.Context), 64),
		done:  make(chan struct{}),
	}
}

// Run executes posted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.doneOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn(ctx)
		}
	}
}

// Post queues fn. It reports false when the loop has already exited.
func (l *Loop) Post(fn func(context.Context)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(context.Context) error) error {
	errc := make(chan error, 1)
	if !l.Post(func(ctx context.Context) { errc <- fn(ctx) }) {
		return ErrLoopClosed
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Every posts fn to the loop on each tick of interval. Ticks already queued
// when cancel runs are dropped, so cancel called from the loop itself is
// final.
func (l *Loop) Every(interval time.Duration, fn func(context.Context)) (cancel func()) {
	var cancelled atomic.Bool
	stop := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				l.Post(func(ctx context.Context) {
					if !cancelled.Load() {
						fn(ctx)
					}
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelled.Store(true)
			close(stop)
		})
	}
}
