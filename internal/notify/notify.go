// Package notify provides cross-platform desktop notification support.
// It uses native notification mechanisms on macOS (osascript) and Linux (notify-send).
package notify

import (
	"fmt"
	"time"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Send sends a notification with the given title and message.
	Send(title, message string) error

	// SendWithSound sends a notification with sound.
	SendWithSound(title, message string) error

	// IsSupported returns true if notifications are supported on this platform.
	IsSupported() bool
}

type noopNotifier struct{}

func (n *noopNotifier) Send(title, message string) error {
	return nil
}

func (n *noopNotifier) SendWithSound(title, message string) error {
	return nil
}

func (n *noopNotifier) IsSupported() bool {
	return false
}

// New creates a platform-specific notifier.
// Returns a no-op notifier if the platform doesn't support notifications.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return &noopNotifier{}
	}
	return n
}

// Alerts applies the user's notification settings to a Notifier.
type Alerts struct {
	n       Notifier
	enabled bool
	sound   bool
}

// NewAlerts returns Alerts that send through n. A nil n uses New().
func NewAlerts(n Notifier, enabled, sound bool) *Alerts {
	if n == nil {
		n = New()
	}
	return &Alerts{n: n, enabled: enabled, sound: sound}
}

// Enabled reports whether alerts will be delivered.
func (a *Alerts) Enabled() bool {
	return a != nil && a.enabled && a.n.IsSupported()
}

// FocusComplete announces the end of a focus session of the given length
// in seconds.
func (a *Alerts) FocusComplete(seconds float64) error {
	if !a.Enabled() {
		return nil
	}
	title, message := focusCompleteText(seconds)
	if a.sound {
		return a.n.SendWithSound(title, message)
	}
	return a.n.Send(title, message)
}

func focusCompleteText(seconds float64) (title, message string) {
	d := time.Duration(seconds) * time.Second
	return "Lever", fmt.Sprintf("Focus session complete (%s). Time for a break.", formatMinutes(d))
}

func formatMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
