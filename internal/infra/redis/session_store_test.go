package redis

import (
	"math/rand"
	"testing"
	"time"

	"learnitquick/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	_ = store.GetOrCreate("p1", func() *app.Session {
		return app.NewSession("p1", rand.New(rand.NewSource(1)), quartz.NewMock(t), app.Timing{}, zerolog.Nop(), nil)
	})
	if !mr.Exists("learnitquick:session:p1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("learnitquick:session:p1"); ttl != time.Minute {
		t.Fatalf("expected liveness ttl of a minute, got %s", ttl)
	}

	store.DeleteIfIdle("p1")
	if mr.Exists("learnitquick:session:p1") {
		t.Fatalf("expected redis key to be removed")
	}
}
