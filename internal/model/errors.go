package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrEmptyData = errors.New("response carries no data")
)

// APIError is a backend response with a non-success status.
type APIError struct {
	Status     int
	StatusText string
	// Data is the parsed envelope when the body was JSON, nil otherwise.
	Data *Envelope
	// Text holds the raw body when it was not JSON.
	Text string
}

func (e *APIError) Error() string {
	if e.Data != nil && e.Data.Erro != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Data.Erro)
	}
	if e.Data != nil && e.Data.Mensagem != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Data.Mensagem)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.StatusText)
}

// TransportError is a failure where no HTTP response was obtained.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
