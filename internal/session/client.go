// Package session implements the single HTTP client every admin panel view
// talks to the backend through. It keeps the session cookie in a jar, owns
// the CSRF token cache and the cached user profile, classifies responses and
// recovers from expired sessions.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
)

// Headers exchanged with the backend.
const (
	HeaderCSRFToken    = "X-CSRF-Token"
	HeaderNewCSRFToken = "X-New-CSRF-Token"
	HeaderRequestID    = "X-Request-ID"
)

// Bootstrap endpoints. They are reachable before a CSRF token can exist.
const (
	PathCSRFToken   = "/auth/csrf-token"
	PathLogin       = "/auth/login"
	PathRegister    = "/auth/registro"
	PathVerifyEmail = "/auth/verificar-email"
)

// Defaults for WithLoginPage and WithRedirectDelay.
const (
	DefaultLoginPage     = "/login.html"
	DefaultRedirectDelay = 2000 * time.Millisecond
)

const tracerName = "github.com/dtroode/painel-admin/internal/session"

// Client is the session-aware API client.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   model.TokenStore
	profiles model.ProfileStore
	logger   *logger.Logger
	tracer   trace.Tracer

	notifier      model.Notifier
	navigator     model.Navigator
	scheduler     model.Scheduler
	logout        model.LogoutFunc
	loginPage     string
	redirectDelay time.Duration

	mu              sync.Mutex
	localeSubs      map[int]func(context.Context, model.LocaleChange)
	nextSubID       int
	redirectPending bool
	redirectGen     uint64
	cancelRedirect  func() bool
}

// New creates a Client for baseURL. The given http client is copied and
// receives a cookie jar when it has none, so every request carries the
// session cookie.
func New(
	baseURL string,
	httpClient *http.Client,
	tokens model.TokenStore,
	profiles model.ProfileStore,
	logger *logger.Logger,
	opts ...Option,
) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	hc := *httpClient
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &hc,
		tokens:        tokens,
		profiles:      profiles,
		logger:        logger,
		tracer:        otel.Tracer(tracerName),
		notifier:      logNotifier{logger: logger},
		navigator:     nopNavigator{},
		scheduler:     timerScheduler{},
		loginPage:     DefaultLoginPage,
		redirectDelay: DefaultRedirectDelay,
		localeSubs:    make(map[int]func(context.Context, model.LocaleChange)),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the URL every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) Result {
	return c.Request(ctx, path, buildOptions(http.MethodGet, nil, opts))
}

// Post issues a POST request with a JSON or multipart body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) Result {
	return c.Request(ctx, path, buildOptions(http.MethodPost, body, opts))
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) Result {
	return c.Request(ctx, path, buildOptions(http.MethodPut, body, opts))
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) Result {
	return c.Request(ctx, path, buildOptions(http.MethodPatch, body, opts))
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) Result {
	return c.Request(ctx, path, buildOptions(http.MethodDelete, nil, opts))
}

// Request is the primitive behind every verb helper.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) Result {
	method := normalizeMethod(opts.Method)
	return c.do(ctx, path, opts, policy{
		method:          method,
		csrf:            requiresCSRF(method, path),
		implicitLogout:  true,
		sessionRecovery: !isBootstrapPath(path),
	})
}

// PostFormData uploads a multipart form. Uploads always carry a CSRF token,
// bootstrap endpoints included.
func (c *Client) PostFormData(ctx context.Context, path string, form *FormData, opts ...RequestOption) Result {
	if form == nil {
		form = NewFormData()
	}
	return c.do(ctx, path, buildOptions(http.MethodPost, form, opts), policy{
		method:          http.MethodPost,
		csrf:            true,
		sessionRecovery: true,
	})
}
