// Package notify delivers transient user-facing messages: to the log, to the
// terminal, and to the desktop over the freedesktop notification bus.
package notify

import (
	"log/slog"
)

// Notifier is fire-and-forget; implementations never block the caller on
// delivery and never report failure.
type Notifier interface {
	Notify(message string)
}

// Func adapts a plain function.
type Func func(message string)

func (f Func) Notify(message string) { f(message) }

// Multi fans a message out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(message)
		}
	}
}

// LogNotifier records messages in the application log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(message string) {
	n.logger.Info("notification", "message", message)
}
