package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"learnitquick/internal/app"
	"learnitquick/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ProfileCache fronts a slower app.ProfileStore (Redis, Postgres) so a
// profile is read once and then served from memory until the TTL expires.
// Saves write through to the backing store.
type ProfileCache struct {
	backing app.ProfileStore
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedProfile
}

type cachedProfile struct {
	profile   domain.Profile
	missing   bool
	expiresAt time.Time
}

func (e cachedProfile) result() (domain.Profile, error) {
	if e.missing {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return clone(e.profile), nil
}

func NewProfileCache(backing app.ProfileStore, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedProfile),
	}
}

func (c *ProfileCache) LoadProfile(ctx context.Context, playerID string) (domain.Profile, error) {
	if entry, ok := c.lookup(playerID); ok {
		return entry.result()
	}

	result, err, _ := c.sf.Do(playerID, func() (interface{}, error) {
		if entry, ok := c.lookup(playerID); ok {
			return entry.result()
		}

		profile, err := c.backing.LoadProfile(ctx, playerID)
		missing := errors.Is(err, domain.ErrProfileNotFound)
		if err != nil && !missing {
			return domain.Profile{}, err
		}
		c.store(playerID, cachedProfile{profile: profile, missing: missing})
		return profile, err
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return clone(result.(domain.Profile)), nil
}

func (c *ProfileCache) SaveProfile(ctx context.Context, playerID string, profile domain.Profile) error {
	if err := c.backing.SaveProfile(ctx, playerID, profile); err != nil {
		return err
	}
	c.store(playerID, cachedProfile{profile: clone(profile)})
	return nil
}

func (c *ProfileCache) lookup(playerID string) (cachedProfile, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[playerID]
	if !ok || !entry.expiresAt.After(now) {
		return cachedProfile{}, false
	}
	return entry, true
}

func (c *ProfileCache) store(playerID string, entry cachedProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry.expiresAt = c.clock().Add(c.ttlWithJitterLocked())
	c.cache[playerID] = entry
}

func (c *ProfileCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
