// Package memory keeps the session caches in process memory. Its lifetime
// matches the process, the closest analogue of a browser tab.
package memory

import (
	"context"
	"sync"

	"github.com/dtroode/painel-admin/internal/model"
)

var (
	_ model.TokenStore   = (*TokenStore)(nil)
	_ model.ProfileStore = (*ProfileStore)(nil)
)

// TokenStore holds a single CSRF token.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", model.ErrNotFound
	}
	return s.token, nil
}

func (s *TokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *TokenStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// ProfileStore holds the cached user profile.
type ProfileStore struct {
	mu   sync.RWMutex
	user *model.User
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

func (s *ProfileStore) Load(_ context.Context) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, model.ErrNotFound
	}
	return *s.user, nil
}

func (s *ProfileStore) Save(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *ProfileStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
