package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/alexanderramin/focuslog/internal/notify"
	"github.com/alexanderramin/focuslog/internal/timer"
	tea "github.com/charmbracelet/bubbletea"
)

// beginFunc puts the engine into a running session. It reports false when
// there is nothing to host.
type beginFunc func(e *engine) (bool, error)

// host runs begin and then keeps the session alive in the timer view or,
// without a terminal, as a plain event log until interrupted.
func (a *App) host(ctx context.Context, out, errOut io.Writer, interactive bool, begin beginFunc) error {
	if interactive {
		return a.hostView(ctx, begin)
	}
	return a.hostHeadless(ctx, out, errOut, begin)
}

// programRelay forwards loop-side messages to a program created later.
type programRelay struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRelay) attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

func (r *programRelay) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (a *App) hostView(ctx context.Context, begin beginFunc) error {
	relay := &programRelay{}
	eng, err := a.newEngine(ctx, notify.Multi{
		a.Notifier,
		notify.Func(func(m string) { relay.send(noticeMsg(m)) }),
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	ok, err := begin(eng)
	if err != nil || !ok {
		return err
	}
	snap, err := eng.Snapshot()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newTimerModel(eng, snap), tea.WithContext(ctx))
	relay.attach(p)
	unsubscribe, err := eng.Subscribe(func(ev timer.Event) { relay.send(timerEventMsg{event: ev}) })
	if err != nil {
		return err
	}
	defer unsubscribe()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (a *App) hostHeadless(ctx context.Context, out, errOut io.Writer, begin beginFunc) error {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	eng, err := a.newEngine(ctx, notify.Multi{
		a.Notifier,
		notify.Func(func(m string) { fmt.Fprintln(errOut, formatter.StyleYellow.Render(m)) }),
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	stopped := make(chan struct{})
	var once sync.Once
	unsubscribe, err := eng.Subscribe(func(ev timer.Event) {
		printEvent(out, a.now(), ev)
		if ev.Kind == timer.EventStopped {
			once.Do(func() { close(stopped) })
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	ok, err := begin(eng)
	if err != nil || !ok {
		return err
	}

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
	}
	if err := eng.Stop(); err != nil && !errors.Is(err, timer.ErrNoActiveSession) {
		return err
	}
	return nil
}

// printEvent writes the headless event log. Ticks are reported on whole
// minutes only.
func printEvent(w io.Writer, now time.Time, ev timer.Event) {
	stamp := formatter.Dim(now.Format("15:04:05"))
	switch ev.Kind {
	case timer.EventStarted:
		fmt.Fprintf(w, "%s session started\n", stamp)
	case timer.EventTick:
		if ev.TimeLeft%time.Minute == 0 {
			fmt.Fprintf(w, "%s %s left\n", stamp, formatter.Clock(ev.TimeLeft))
		}
	case timer.EventReverseCountdownStarted:
		fmt.Fprintf(w, "%s countdown finished, overrun started\n", stamp)
	case timer.EventOverrunTick:
		if ev.Elapsed%time.Minute == 0 && ev.Elapsed > 0 {
			fmt.Fprintf(w, "%s overrun -%s\n", stamp, formatter.Clock(ev.Elapsed))
		}
	case timer.EventReverseCountdownEnded:
		fmt.Fprintf(w, "%s back to countdown\n", stamp)
	case timer.EventReset:
		fmt.Fprintf(w, "%s timer reset\n", stamp)
	case timer.EventStopped:
		fmt.Fprintf(w, "%s session stopped (%s)\n", stamp, ev.Reason)
	}
}
