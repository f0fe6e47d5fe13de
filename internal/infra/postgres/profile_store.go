package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"learnitquick/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileStore keeps profile JSONB rows in Postgres.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) LoadProfile(ctx context.Context, playerID string) (domain.Profile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM profiles WHERE player_id=$1`, playerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if profile.Achievements == nil {
		profile.Achievements = []string{}
	}
	return profile, nil
}

func (s *ProfileStore) SaveProfile(ctx context.Context, playerID string, profile domain.Profile) error {
	if profile.Achievements == nil {
		profile.Achievements = []string{}
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO profiles (player_id, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (player_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		playerID, string(data))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
