package timer

import (
	"time"

	"github.com/alexanderramin/focuslog/internal/domain"
)

type EventKind int

const (
	EventTick EventKind = iota + 1
	EventStarted
	EventStopped
	EventReset
	EventReverseCountdownStarted
	EventReverseCountdownEnded
	EventOverrunTick
)

func (k EventKind) String() string {
	switch k {
	case EventTick:
		return "tick"
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventReset:
		return "reset"
	case EventReverseCountdownStarted:
		return "reverse_countdown_started"
	case EventReverseCountdownEnded:
		return "reverse_countdown_ended"
	case EventOverrunTick:
		return "overrun_tick"
	}
	return "unknown"
}

// Event is delivered synchronously to subscribers on the controller's
// context. TimeLeft is set for Tick, Elapsed for OverrunTick, Reason for
// Stopped.
type Event struct {
	Kind     EventKind
	TimeLeft time.Duration
	Elapsed  time.Duration
	Reason   domain.StopReason
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every event. Subscribers run in registration
// order. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.nextSubscriberID++
	id := c.nextSubscriberID
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) emit(ev Event) {
	subs := c.subscribers
	for _, s := range subs {
		s.fn(ev)
	}
}
