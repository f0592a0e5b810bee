// Package sqlite stores the cached user profile in a local SQLite file, so
// it survives restarts the way browser local storage does.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dtroode/painel-admin/internal/model"
)

//go:embed schema.sql
var schema string

var _ model.ProfileStore = (*ProfileRepository)(nil)

// Open opens (or creates) the database and applies the schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

type ProfileRepository struct {
	db    *sql.DB
	scope string
}

func NewProfileRepository(db *sql.DB, scope string) *ProfileRepository {
	return &ProfileRepository{
		db:    db,
		scope: scope,
	}
}

func (r *ProfileRepository) Load(ctx context.Context) (model.User, error) {
	const query = `SELECT data FROM profiles WHERE scope = ?`

	var data string
	if err := r.db.QueryRowContext(ctx, query, r.scope).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return model.User{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return user, nil
}

func (r *ProfileRepository) Save(ctx context.Context, user model.User) error {
	const query = `INSERT INTO profiles (scope, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, r.scope, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context) error {
	const query = `DELETE FROM profiles WHERE scope = ?`

	if _, err := r.db.ExecContext(ctx, query, r.scope); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
