package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/painel-admin/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

// ProfileRepository keeps cached profiles in Postgres, one row per scope.
type ProfileRepository struct {
	db    *Connection
	scope string
}

func NewProfileRepository(db *Connection, scope string) *ProfileRepository {
	return &ProfileRepository{
		db:    db,
		scope: scope,
	}
}

func (r *ProfileRepository) Load(ctx context.Context) (model.User, error) {
	const query = `SELECT data FROM profiles WHERE scope = $1`

	var data []byte
	err := r.db.QueryRow(ctx, query, r.scope).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return model.User{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return user, nil
}

func (r *ProfileRepository) Save(ctx context.Context, user model.User) error {
	const query = `
        INSERT INTO profiles (scope, data, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (scope) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
    `

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, r.scope, data); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context) error {
	const query = `DELETE FROM profiles WHERE scope = $1`

	if _, err := r.db.Exec(ctx, query, r.scope); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
