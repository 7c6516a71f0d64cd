package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore remembers which notification IDs were already displayed and
// acknowledged, so a poll cycle can skip them. Lookups fail open: when the
// store cannot answer, the notification is shown again, which the
// at-least-once contract allows.
type SeenStore interface {
	Seen(ctx context.Context, id int) bool
	Mark(ctx context.Context, id int)
}

type memorySeen struct {
	mu  sync.Mutex
	ids map[int]struct{}
}

// NewMemorySeen returns a session-lifetime in-memory store.
func NewMemorySeen() SeenStore {
	return &memorySeen{ids: make(map[int]struct{})}
}

func (s *memorySeen) Seen(_ context.Context, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *memorySeen) Mark(_ context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

type redisSeen struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSeen returns a store whose entries expire after ttl, so displayed
// IDs survive agent restarts within that window.
func NewRedisSeen(client *redis.Client, ttl time.Duration) SeenStore {
	return &redisSeen{client: client, ttl: ttl}
}

func (s *redisSeen) Seen(ctx context.Context, id int) bool {
	count, err := s.client.Exists(ctx, seenKey(id)).Result()
	if err != nil {
		return false
	}
	return count > 0
}

func (s *redisSeen) Mark(ctx context.Context, id int) {
	if err := s.client.Set(ctx, seenKey(id), "1", s.ttl).Err(); err != nil {
		log.Printf("notify seen store write error: %v", err)
	}
}

func seenKey(id int) string {
	return fmt.Sprintf("notify_seen:%d", id)
}
