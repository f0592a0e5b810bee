package session

import (
	"context"
	"strings"
)

// recoverSession handles a 401 outside the login page: it clears the cached
// profile and token, tells the user, and schedules the login redirect.
// Only one redirect is pending at a time.
func (c *Client) recoverSession(ctx context.Context) {
	if strings.Contains(c.navigator.Location(), c.loginPage) {
		return
	}

	c.logger.Info("SessionClient: session expired, redirecting to login",
		"login_page", c.loginPage,
		"delay", c.redirectDelay)

	ctx = context.WithoutCancel(ctx)
	if err := c.DeleteUser(ctx); err != nil {
		c.logger.Error("SessionClient: failed to clear profile on session expiry",
			"error", err.Error())
	}
	if err := c.DeleteCSRFToken(ctx); err != nil {
		c.logger.Error("SessionClient: failed to clear CSRF token on session expiry",
			"error", err.Error())
	}

	c.ShowError(sessionExpiredMessage)

	c.mu.Lock()
	if c.redirectPending {
		c.mu.Unlock()
		return
	}
	c.redirectPending = true
	c.redirectGen++
	gen := c.redirectGen
	c.mu.Unlock()

	cancel := c.scheduler.AfterFunc(c.redirectDelay, func() {
		c.mu.Lock()
		if !c.redirectPending || c.redirectGen != gen {
			c.mu.Unlock()
			return
		}
		c.redirectPending = false
		c.cancelRedirect = nil
		c.mu.Unlock()
		c.navigator.Navigate(c.loginPage)
	})

	c.mu.Lock()
	current := c.redirectPending && c.redirectGen == gen
	if current {
		c.cancelRedirect = cancel
	}
	c.mu.Unlock()

	// Cancelled while being scheduled.
	if !current {
		cancel()
	}
}

// RedirectPending reports whether a login redirect is scheduled.
func (c *Client) RedirectPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirectPending
}

// CancelRedirect cancels a scheduled login redirect, for instance after the
// user logged in again during the grace period. It reports whether a
// redirect was pending.
func (c *Client) CancelRedirect() bool {
	c.mu.Lock()
	if !c.redirectPending {
		c.mu.Unlock()
		return false
	}
	c.redirectPending = false
	c.redirectGen++
	cancel := c.cancelRedirect
	c.cancelRedirect = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}
