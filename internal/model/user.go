package model

import "context"

// ProfileStore persists the cached profile of the authenticated user.
type ProfileStore interface {
	Load(ctx context.Context) (User, error)
	Save(ctx context.Context, user User) error
	Delete(ctx context.Context) error
}

// User is a denormalized snapshot of the authenticated principal.
// The server session stays authoritative; this is display data only.
type User struct {
	ID     int64  `json:"id,omitempty"`
	Nome   string `json:"nome"`
	Email  string `json:"email,omitempty"`
	Tipo   string `json:"tipo,omitempty"`
	Idioma string `json:"idioma,omitempty"`
}
