//go:build linux

package notify

import (
	"fmt"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName  = "org.freedesktop.Notifications"
	notificationsPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsIface = "org.freedesktop.Notifications"
)

type dbusNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus notification server. Without a session
// bus it returns Disabled.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Disabled{}, nil //nolint:nilerr // no session bus means no notifications
	}
	return &dbusNotifier{obj: conn.Object(notificationsName, notificationsPath)}, nil
}

func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout) -> id
	call := n.obj.Call(notificationsIface+".Notify", 0,
		AppName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		[]string{},
		hints(notif),
		notif.Timeout,
	)
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify %q: %w", notif.Title, err)
	}
	return id, nil
}

func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(notificationsIface+".CloseNotification", 0, id).Err
}

// hints builds the notification hints. An icon given as a file is also
// sent as image-path, which servers prefer for album art.
func hints(notif Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(AppName),
	}
	if notif.Transient {
		h["transient"] = dbus.MakeVariant(true)
	}
	if filepath.IsAbs(notif.Icon) {
		h["image-path"] = dbus.MakeVariant("file://" + notif.Icon)
	}
	return h
}
