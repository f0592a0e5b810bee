// Package navigation keeps track of the current view location.
package navigation

import (
	"sync"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
)

var _ model.Navigator = (*Tracker)(nil)

// Tracker is an in-process Navigator. It remembers the current location and
// every navigation, and calls OnNavigate hooks after each move.
type Tracker struct {
	mu       sync.RWMutex
	location string
	history  []string
	hooks    []func(target string)
	logger   *logger.Logger
}

func NewTracker(start string, logger *logger.Logger) *Tracker {
	return &Tracker{
		location: start,
		logger:   logger,
	}
}

func (t *Tracker) Location() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.location
}

func (t *Tracker) Navigate(target string) {
	t.mu.Lock()
	from := t.location
	t.location = target
	t.history = append(t.history, target)
	hooks := append([]func(string){}, t.hooks...)
	t.mu.Unlock()

	t.logger.Info("Navigator: navigated",
		"from", from,
		"to", target)

	for _, hook := range hooks {
		hook(target)
	}
}

// OnNavigate registers fn to run after each navigation.
func (t *Tracker) OnNavigate(fn func(target string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, fn)
}

// History returns the navigations in order.
func (t *Tracker) History() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.history...)
}
