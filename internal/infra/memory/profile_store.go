package memory

import (
	"context"
	"sync"

	"learnitquick/internal/domain"
)

// ProfileStore keeps profiles in a map. Useful for tests, demos and the
// headless simulator.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]domain.Profile)}
}

func (s *ProfileStore) LoadProfile(_ context.Context, playerID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[playerID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return clone(profile), nil
}

func (s *ProfileStore) SaveProfile(_ context.Context, playerID string, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[playerID] = clone(profile)
	return nil
}

func clone(p domain.Profile) domain.Profile {
	p.Achievements = append([]string{}, p.Achievements...)
	return p
}
