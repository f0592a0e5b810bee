package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dtroode/painel-admin/internal/model"
)

// User returns the cached profile, or nil when nobody is logged in.
func (c *Client) User(ctx context.Context) (*model.User, error) {
	user, err := c.profiles.Load(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	return &user, nil
}

// SetUser caches the profile. When the preferred locale changes, locale
// subscribers are notified in the background.
func (c *Client) SetUser(ctx context.Context, user model.User) error {
	previous, err := c.User(ctx)
	if err != nil {
		c.logger.Warn("SessionClient: failed to read previous profile",
			"error", err.Error())
	}

	if err := c.profiles.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}

	var previousLocale string
	if previous != nil {
		previousLocale = previous.Idioma
	}
	if user.Idioma != "" && user.Idioma != previousLocale {
		c.emitLocaleChange(ctx, model.LocaleChange{Previous: previousLocale, Current: user.Idioma})
	}

	return nil
}

// DeleteUser drops the cached profile.
func (c *Client) DeleteUser(ctx context.Context) error {
	if err := c.profiles.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user profile: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a profile is cached. It does not contact
// the backend and may be stale until the next failed call.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	user, err := c.User(ctx)
	return err == nil && user != nil
}

// SubscribeLocale registers fn for locale changes. The returned func removes
// the subscription.
func (c *Client) SubscribeLocale(fn func(context.Context, model.LocaleChange)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.localeSubs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.localeSubs, id)
	}
}

func (c *Client) emitLocaleChange(ctx context.Context, change model.LocaleChange) {
	c.mu.Lock()
	subs := slices.Collect(maps.Values(c.localeSubs))
	c.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	c.logger.Debug("SessionClient: locale changed",
		"previous", change.Previous,
		"current", change.Current)

	ctx = context.WithoutCancel(ctx)
	for _, fn := range subs {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("SessionClient: locale subscriber panicked",
						"panic", r)
				}
			}()
			fn(ctx, change)
		}()
	}
}
