package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/painel-admin/internal/model"
)

// CSRFToken returns the cached token, or "" when none is cached.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read CSRF token: %w", err)
	}
	return token, nil
}

// SetCSRFToken replaces the cached token.
func (c *Client) SetCSRFToken(ctx context.Context, token string) error {
	if err := c.tokens.Set(ctx, token); err != nil {
		return fmt.Errorf("failed to store CSRF token: %w", err)
	}
	return nil
}

// DeleteCSRFToken drops the cached token. The next mutating request fetches
// a fresh one.
func (c *Client) DeleteCSRFToken(ctx context.Context) error {
	if err := c.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete CSRF token: %w", err)
	}
	return nil
}

// FetchCSRFToken asks the backend for a new token and caches it.
// A rotated token in the response header is cached as on any other response
// and serves as the result when the body carries none. Every other failure
// yields "".
func (c *Client) FetchCSRFToken(ctx context.Context) string {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "session.fetch_csrf_token",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.path", PathCSRFToken),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathCSRFToken, nil)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		c.logger.Error("SessionClient: failed to build CSRF token request",
			"error", err.Error())
		return ""
	}
	req.Header.Set(HeaderRequestID, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		c.logger.Error("SessionClient: failed to fetch CSRF token",
			"request_id", requestID,
			"error", err.Error())
		return ""
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	rotated := resp.Header.Get(HeaderNewCSRFToken)
	if rotated != "" {
		if err := c.SetCSRFToken(ctx, rotated); err != nil {
			c.logger.Error("SessionClient: failed to store rotated CSRF token",
				"path", PathCSRFToken,
				"error", err.Error())
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(otelcodes.Error, resp.Status)
		c.logger.Warn("SessionClient: CSRF token endpoint refused",
			"status", resp.StatusCode)
		return ""
	}

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.logger.Warn("SessionClient: malformed CSRF token response",
			"error", err.Error())
		return rotated
	}
	if !env.Sucesso {
		return rotated
	}

	var payload model.CSRFTokenPayload
	if err := env.DecodeData(&payload); err != nil || payload.CSRFToken == "" {
		if rotated != "" {
			return rotated
		}
		c.logger.Warn("SessionClient: CSRF token missing from response")
		return ""
	}

	if err := c.SetCSRFToken(ctx, payload.CSRFToken); err != nil {
		c.logger.Error("SessionClient: failed to cache fetched CSRF token",
			"error", err.Error())
	}
	return payload.CSRFToken
}

// EnsureCSRFToken returns the cached token or fetches one.
func (c *Client) EnsureCSRFToken(ctx context.Context) string {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		c.logger.Error("SessionClient: failed to read cached CSRF token",
			"error", err.Error())
	}
	if token != "" {
		return token
	}
	return c.FetchCSRFToken(ctx)
}
