package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dtroode/painel-admin/internal/model"
)

// Kind classifies the outcome of a call.
type Kind int

const (
	// KindOK is a 2xx response.
	KindOK Kind = iota
	// KindImplicitLogout is the "user not found" answer that logged the
	// session out. It carries no error.
	KindImplicitLogout
	// KindAppError is a non-2xx response; Err is a *model.APIError.
	KindAppError
	// KindTransportError means no response was obtained; Err is a
	// *model.TransportError.
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindImplicitLogout:
		return "implicit_logout"
	case KindAppError:
		return "app_error"
	case KindTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var errNotJSON = errors.New("response body is not JSON")

// Result is the tagged outcome of a request.
type Result struct {
	Kind     Kind
	Status   int
	Header   http.Header
	Body     []byte
	JSON     bool
	Envelope *model.Envelope
	Err      error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// APIError returns the application error carried by the result, if any.
func (r Result) APIError() (*model.APIError, bool) {
	var apiErr *model.APIError
	if errors.As(r.Err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Decode unmarshals the whole JSON body into v.
func (r Result) Decode(v any) error {
	if !r.JSON {
		return errNotJSON
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// DecodeData unmarshals the envelope's dados field into v.
func (r Result) DecodeData(v any) error {
	if r.Envelope == nil {
		return model.ErrEmptyData
	}
	return r.Envelope.DecodeData(v)
}

// Text returns the raw response body.
func (r Result) Text() string {
	return string(r.Body)
}

func (r Result) String() string {
	return fmt.Sprintf("%s (status %d)", r.Kind, r.Status)
}
