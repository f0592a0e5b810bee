package service

import (
	"errors"

	"github.com/dtroode/painel-admin/internal/session"
)

// ErrSessionEnded is returned when the backend answered with the
// user-not-found signal and the session was closed locally.
var ErrSessionEnded = errors.New("session ended by the server")

// ErrObjectExists is returned by Files.Pull when the target key is taken.
var ErrObjectExists = errors.New("object already exists")

// ErrObjectUnavailable is returned by Files.Push when the object could not
// be read from the bucket. No request reached the backend.
var ErrObjectUnavailable = errors.New("object unavailable")

// resultError turns a non-OK result into an error.
func resultError(r session.Result) error {
	switch r.Kind {
	case session.KindOK:
		return nil
	case session.KindImplicitLogout:
		return ErrSessionEnded
	default:
		return r.Err
	}
}
