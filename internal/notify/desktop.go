package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsMethod = "org.freedesktop.Notifications.Notify"

	appName       = "focuslog"
	summary       = "Focus session"
	expireTimeout = int32(5000)
)

// busObject is the part of dbus.BusObject the notifier uses.
type busObject interface {
	Go(method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call
}

type dialFunc func() (busObject, io.Closer, error)

// DesktopNotifier posts messages to the user's session bus. The connection
// is opened on first use and kept until Close. Calls do not wait for a
// reply.
type DesktopNotifier struct {
	mu     sync.Mutex
	dial   dialFunc
	obj    busObject
	conn   io.Closer
	logger *slog.Logger
}

func NewDesktopNotifier(logger *slog.Logger) *DesktopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesktopNotifier{dial: dialSessionBus, logger: logger}
}

func dialSessionBus() (busObject, io.Closer, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	return conn.Object(notificationsDest, notificationsPath), conn, nil
}

func (d *DesktopNotifier) Notify(message string) {
	obj, err := d.object()
	if err != nil {
		d.logger.Warn("desktop notification unavailable", "error", err)
		return
	}
	call := obj.Go(notificationsMethod, dbus.FlagNoReplyExpected, nil,
		appName,                   // app_name
		uint32(0),                 // replaces_id
		"appointment-soon",        // app_icon
		summary,                   // summary
		message,                   // body
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		expireTimeout,             // expire_timeout
	)
	if call != nil && call.Err != nil {
		d.logger.Warn("sending desktop notification", "error", call.Err)
	}
}

func (d *DesktopNotifier) object() (busObject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.obj != nil {
		return d.obj, nil
	}
	obj, conn, err := d.dial()
	if err != nil {
		return nil, err
	}
	d.obj, d.conn = obj, conn
	return obj, nil
}

// Close releases the bus connection if one was opened.
func (d *DesktopNotifier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.obj, d.conn = nil, nil
	return err
}
