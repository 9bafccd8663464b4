package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/domain"
	"github.com/alexanderramin/focuslog/internal/notify"
	"github.com/alexanderramin/focuslog/internal/timer"
)

// timerSnapshot is a copy of the controller state taken on the loop.
type timerSnapshot struct {
	Countdown domain.Countdown
	Session   *domain.Session
	Settings  config.Settings
}

// timerControls is what the timer view may ask of the engine. Every call
// blocks until the loop has run it.
type timerControls interface {
	Start(task, project string) error
	Stop() error
	Reset() error
	Adjust(deltaMinutes int) error
	SetLength(minutes int) error
	UpdateTask(task string) error
	Snapshot() (timerSnapshot, error)
}

// engine hosts one Controller on its own serial loop. It outlives the
// command context so a cancelled command can still stop its session.
type engine struct {
	loop   *timer.Loop
	ctrl   *timer.Controller
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func (a *App) newEngine(ctx context.Context, notifier notify.Notifier) (*engine, error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e := &engine{
		loop:   timer.NewLoop(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(e.done)
		e.loop.Run(ctx)
	}()

	err := e.loop.Do(ctx, func(ctx context.Context) error {
		ctrl, err := timer.New(ctx, timer.Options{
			Clock:     a.Clock,
			Scheduler: e.loop,
			Journal:   a.Journal,
			Probe:     a.Probe,
			Notifier:  notifier,
			History:   a.History,
			Settings:  a.Settings,
			Store:     a.Sessions,
			Logger:    a.logger().With("component", "timer"),
		})
		e.ctrl = ctrl
		return err
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("creating timer: %w", err)
	}
	return e, nil
}

// Close stops the loop and waits for it to exit. A running session is left
// recorded for a later resume.
func (e *engine) Close() {
	e.cancel()
	<-e.done
}

func (e *engine) do(fn func(ctx context.Context) error) error {
	return e.loop.Do(e.ctx, fn)
}

func (e *engine) Start(task, project string) error {
	return e.do(func(ctx context.Context) error { return e.ctrl.Start(ctx, task, project) })
}

func (e *engine) Stop() error {
	return e.do(func(ctx context.Context) error { return e.ctrl.Stop(ctx) })
}

func (e *engine) Reset() error {
	return e.do(func(ctx context.Context) error { return e.ctrl.Reset(ctx) })
}

func (e *engine) Adjust(deltaMinutes int) error {
	return e.do(func(context.Context) error { return e.ctrl.AdjustLength(deltaMinutes) })
}

func (e *engine) UpdateTask(task string) error {
	return e.do(func(ctx context.Context) error { return e.ctrl.UpdateTask(ctx, task) })
}

func (e *engine) SetLength(minutes int) error {
	return e.do(func(context.Context) error {
		e.ctrl.SetLength(minutes)
		return nil
	})
}

func (e *engine) Resume() (bool, error) {
	var resumed bool
	err := e.do(func(ctx context.Context) error {
		var err error
		resumed, err = e.ctrl.Resume(ctx)
		return err
	})
	return resumed, err
}

func (e *engine) Snapshot() (timerSnapshot, error) {
	var snap timerSnapshot
	err := e.do(func(context.Context) error {
		snap = timerSnapshot{
			Countdown: e.ctrl.Countdown(),
			Session:   e.ctrl.Session(),
			Settings:  e.ctrl.Settings(),
		}
		return nil
	})
	return snap, err
}

// Subscribe registers fn on the loop. fn runs on the loop goroutine and
// must not call back into the engine.
func (e *engine) Subscribe(fn func(timer.Event)) (unsubscribe func(), err error) {
	var unsub func()
	err = e.do(func(context.Context) error {
		unsub = e.ctrl.Subscribe(fn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = e.do(func(context.Context) error {
			unsub()
			return nil
		})
	}, nil
}
