// Package notify delivers desktop notifications over the session bus using
// the org.freedesktop.Notifications interface.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"gamewrap/internal/logger"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	method     = "org.freedesktop.Notifications.Notify"
)

// Server sends notifications on behalf of one application.
type Server struct {
	appName string
}

// New returns a notification server for the named application.
func New(appName string) *Server {
	return &Server{appName: appName}
}

func (s *Server) send(summary, icon string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(busName, dbus.ObjectPath(objectPath))
	call := obj.Call(method, 0,
		s.appName,
		uint32(0), // no notification to replace
		icon,
		s.appName,
		summary,
		[]string{},
		map[string]dbus.Variant{},
		int32(-1), // server-default expiration
	)
	if call.Err != nil {
		return fmt.Errorf("failed to display notification: %w", call.Err)
	}
	return nil
}

// Info shows an informational notification.
func (s *Server) Info(msg string) error {
	return s.send(msg, "dialog-information")
}

// Error shows an error notification and logs it.
func (s *Server) Error(msg string) error {
	logger.WithComponent("notify").Error().Msg(msg)
	return s.send(msg, "dialog-error")
}

// Notify satisfies the supervisor's Notifier with an error-level
// notification; fatal session errors must be user-visible.
func (s *Server) Notify(msg string) error {
	return s.Error(msg)
}
