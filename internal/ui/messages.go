// Package ui provides the lever terminal user interface.
// This file defines the message types the App receives from commands and
// from goroutines outside the Bubble Tea loop.
package ui

import "time"

// dispatchMsg carries work posted from another goroutine, such as a timer
// tick, so it runs on the loop that owns the state.
type dispatchMsg func()

// tickMsg is sent periodically to expire status messages.
type tickMsg time.Time

// exportedMsg is sent when the Markdown export has been copied.
type exportedMsg struct {
	err error
}

// notifiedMsg is sent when a desktop notification has been attempted.
type notifiedMsg struct {
	err error
}
