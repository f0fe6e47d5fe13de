package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"learnitquick/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StorageName is the fixed name of the persisted player record.
const StorageName = "learnitquick-storage"

// ProfileStore persists each profile as one JSON record:
// SET learnitquick-storage:{playerID} {"playerName":...,"totalCoins":...}
// Records never expire.
type ProfileStore struct {
	client *redis.Client
}

func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func (s *ProfileStore) LoadProfile(ctx context.Context, playerID string) (domain.Profile, error) {
	raw, err := s.client.Get(ctx, s.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
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
	if err := s.client.Set(ctx, s.key(playerID), data, 0).Err(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) key(playerID string) string {
	return StorageName + ":" + playerID
}
