package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/painel-admin/internal/model"
)

const userNotFoundMessage = "Usuário não encontrado"

// RequestOptions describes one call. Header entries override the defaults
// set by the client, except the CSRF header.
type RequestOptions struct {
	Method string
	Body   any
	Header http.Header
}

// RequestOption adjusts RequestOptions for the verb helpers.
type RequestOption func(*RequestOptions)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Header == nil {
			o.Header = make(http.Header)
		}
		o.Header.Set(key, value)
	}
}

func buildOptions(method string, body any, opts []RequestOption) RequestOptions {
	o := RequestOptions{Method: method, Body: body}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type policy struct {
	method          string
	csrf            bool
	implicitLogout  bool
	sessionRecovery bool
}

var mutatingMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

var bootstrapPaths = []string{PathCSRFToken, PathLogin, PathRegister, PathVerifyEmail}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

// isBootstrapPath reports whether path is one of the endpoints reachable
// without a session. A 401 there means bad credentials, not an expired session.
func isBootstrapPath(path string) bool {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	for _, exempt := range bootstrapPaths {
		if p == exempt || strings.HasPrefix(p, exempt+"/") {
			return true
		}
	}
	return false
}

// requiresCSRF reports whether a request must carry the CSRF header.
func requiresCSRF(method, path string) bool {
	if _, ok := mutatingMethods[method]; !ok {
		return false
	}
	return !isBootstrapPath(path)
}

func (c *Client) do(ctx context.Context, path string, opts RequestOptions, p policy) Result {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "session.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", p.method),
			attribute.String("url.path", path),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	c.logger.Debug("SessionClient: request started",
		"method", p.method,
		"path", path,
		"request_id", requestID)

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return c.transportFailure(span, "failed to encode request body", err, p, path)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, c.baseURL+path, body)
	if err != nil {
		return c.transportFailure(span, "failed to build request", err, p, path)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(HeaderRequestID, requestID)
	for key, values := range opts.Header {
		req.Header[http.CanonicalHeaderKey(key)] = values
	}

	if p.csrf {
		if token := c.EnsureCSRFToken(ctx); token != "" {
			req.Header.Set(HeaderCSRFToken, token)
		} else {
			c.logger.Warn("SessionClient: sending mutating request without CSRF token",
				"method", p.method,
				"path", path)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportFailure(span, "failed to send request", err, p, path)
	}
	defer resp.Body.Close()

	if token := resp.Header.Get(HeaderNewCSRFToken); token != "" {
		if err := c.SetCSRFToken(ctx, token); err != nil {
			c.logger.Error("SessionClient: failed to store rotated CSRF token",
				"path", path,
				"error", err.Error())
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(span, "failed to read response body", err, p, path)
	}

	res := Result{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   raw,
		JSON:   isJSONContent(resp.Header.Get("Content-Type")),
	}
	if res.JSON {
		var env model.Envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			res.Envelope = &env
		}
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		res.Kind = KindOK
		c.logger.Debug("SessionClient: request completed",
			"method", p.method,
			"path", path,
			"status", resp.StatusCode)
		return res
	}

	apiErr := &model.APIError{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Data:       res.Envelope,
	}
	if !res.JSON {
		apiErr.Text = string(raw)
	}

	if p.implicitLogout && isUserNotFound(apiErr) {
		c.logger.Info("SessionClient: backend no longer knows the current user, logging out",
			"path", path)
		if c.logout != nil {
			c.logout(ctx)
		}
		res.Kind = KindImplicitLogout
		return res
	}

	if isCSRFRejection(apiErr) {
		c.logger.Info("SessionClient: CSRF token rejected, invalidating cache",
			"path", path)
		if err := c.DeleteCSRFToken(ctx); err != nil {
			c.logger.Error("SessionClient: failed to invalidate CSRF token",
				"error", err.Error())
		}
	}

	c.ShowError(HandleError(apiErr))

	span.SetStatus(otelcodes.Error, apiErr.Error())
	c.logger.Error("SessionClient: request failed",
		"method", p.method,
		"path", path,
		"status", resp.StatusCode,
		"error", apiErr.Error())

	res.Kind = KindAppError
	res.Err = apiErr

	if apiErr.Status == http.StatusUnauthorized && p.sessionRecovery {
		c.recoverSession(ctx)
	}

	return res
}

func (c *Client) transportFailure(span trace.Span, op string, err error, p policy, path string) Result {
	terr := &model.TransportError{Op: op, Err: err}
	span.RecordError(terr)
	span.SetStatus(otelcodes.Error, terr.Error())
	c.logger.Error("SessionClient: transport failure",
		"method", p.method,
		"path", path,
		"error", terr.Error())
	return Result{Kind: KindTransportError, Err: terr}
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "application/json", nil
	case *FormData:
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func isJSONContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// isUserNotFound matches the backend answer to a self-lookup of a user that
// no longer exists. Other 404s are ordinary errors.
func isUserNotFound(err *model.APIError) bool {
	return err.Status == http.StatusNotFound &&
		err.Data != nil &&
		!err.Data.Sucesso &&
		err.Data.Erro == userNotFoundMessage
}

// isCSRFRejection relies on the message text; the backend exposes no
// dedicated error code for CSRF failures.
func isCSRFRejection(err *model.APIError) bool {
	return err.Status == http.StatusForbidden &&
		err.Data != nil &&
		strings.Contains(strings.ToLower(err.Data.Erro), "csrf")
}
