// Package notify sends desktop notifications over the session bus
// using the org.freedesktop.Notifications interface.
package notify

import (
	"github.com/godbus/dbus/v5"

	"github.com/tailtray/tailtray/common"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"

	// Freedesktop urgency levels.
	urgencyNormal   = byte(1)
	urgencyCritical = byte(2)

	// expireDefault lets the notification daemon pick the timeout.
	expireDefault = int32(-1)
)

// DBusNotifier sends notifications over the D-Bus session bus. It
// implements common.Notifier.
type DBusNotifier struct {
	conn *dbus.Conn
	icon string
}

// New connects to the session bus. The icon is a themed icon name
// included with every notification.
func New(icon string) (*DBusNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, common.WrapError(err, "connect to session bus")
	}
	return &DBusNotifier{conn: conn, icon: icon}, nil
}

func (n *DBusNotifier) send(title, message string, urgency byte) error {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}

	obj := n.conn.Object(notifyDest, notifyPath)
	call := obj.Call(notifyMethod, 0,
		common.AppName, // app_name
		uint32(0),      // replaces_id
		n.icon,         // app_icon
		title,          // summary
		message,        // body
		[]string{},     // actions
		hints,
		expireDefault,
	)
	if call.Err != nil {
		return common.WrapError(call.Err, "send notification")
	}
	return nil
}

// Notify sends a normal-urgency notification.
func (n *DBusNotifier) Notify(title, message string) error {
	return n.send(title, message, urgencyNormal)
}

// NotifyError sends a critical-urgency notification.
func (n *DBusNotifier) NotifyError(title, message string) error {
	return n.send(title, message, urgencyCritical)
}

// Close drops the bus connection.
func (n *DBusNotifier) Close() error {
	return n.conn.Close()
}

// Noop discards notifications. It stands in when notifications are
// disabled in the config or the session bus is unreachable.
type Noop struct{}

func (Noop) Notify(title, message string) error      { return nil }
func (Noop) NotifyError(title, message string) error { return nil }
