// Package mocks contains testify mocks of the model interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/painel-admin/internal/model"
)

// TokenStore is a mock of model.TokenStore.
type TokenStore struct {
	mock.Mock
}

func (m *TokenStore) Get(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *TokenStore) Set(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenStore) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ProfileStore is a mock of model.ProfileStore.
type ProfileStore struct {
	mock.Mock
}

func (m *ProfileStore) Load(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *ProfileStore) Save(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *ProfileStore) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Storage is a mock of model.Storage.
type Storage struct {
	mock.Mock
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
