package session

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/painel-admin/internal/model"
)

// Option configures optional collaborators of the Client.
type Option func(*Client)

// WithNotifier sets the user-facing message display.
func WithNotifier(n model.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithTracerProvider sets where request spans go. The global provider is
// used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithNavigator sets the location source used by session-expiry recovery.
func WithNavigator(n model.Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithScheduler replaces the timer used for the delayed login redirect.
func WithScheduler(s model.Scheduler) Option {
	return func(c *Client) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithLogout sets the collaborator invoked when the backend reports the
// current user as missing.
func WithLogout(fn model.LogoutFunc) Option {
	return func(c *Client) {
		c.logout = fn
	}
}

// WithLoginPage sets the login page location.
func WithLoginPage(page string) Option {
	return func(c *Client) {
		if page != "" {
			c.loginPage = page
		}
	}
}

// WithRedirectDelay sets the grace period before navigating to the login page.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.redirectDelay = d
		}
	}
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

type nopNavigator struct{}

func (nopNavigator) Location() string { return "" }
func (nopNavigator) Navigate(string)  {}
