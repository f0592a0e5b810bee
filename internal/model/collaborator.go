package model

import (
	"context"
	"time"
)

// Notifier displays user-facing messages. Implementations must not block
// for long and must not panic.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Navigator reports the current location and moves to another one.
type Navigator interface {
	Location() string
	Navigate(target string)
}

// Scheduler runs fn after d. The returned func cancels the run when it has
// not started yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func() bool)
}

// LogoutFunc is invoked when the backend reports the current user as gone.
type LogoutFunc func(ctx context.Context)

// LocaleChange is emitted when a new profile switches the preferred locale.
type LocaleChange struct {
	Previous string
	Current  string
}
