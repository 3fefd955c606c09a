package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// claimTTL bounds how long a crashed instance can hold a reminder.
const claimTTL = 5 * time.Minute

// Claimer hands each due reminder to exactly one dispatcher.
type Claimer interface {
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
}

// RedisClaimer coordinates dispatchers running in several processes.
type RedisClaimer struct {
	rdb *goredis.Client
}

// NewRedisClaimer creates a claimer on rdb.
func NewRedisClaimer(rdb *goredis.Client) *RedisClaimer {
	return &RedisClaimer{rdb: rdb}
}

func (c *RedisClaimer) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, claimKey(id), "1", claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim reminder %s: %w", id, err)
	}
	return ok, nil
}

func (c *RedisClaimer) Release(ctx context.Context, id uuid.UUID) error {
	if err := c.rdb.Del(ctx, claimKey(id)).Err(); err != nil {
		return fmt.Errorf("release reminder %s: %w", id, err)
	}
	return nil
}

func claimKey(id uuid.UUID) string {
	return "mindwell:reminder:claim:" + id.String()
}

// MemoryClaimer coordinates dispatchers within one process. Claims expire
// after claimTTL like their Redis counterparts.
type MemoryClaimer struct {
	mu      sync.Mutex
	now     func() time.Time
	claimed map[uuid.UUID]time.Time
}

// NewMemoryClaimer creates an empty in-process claimer.
func NewMemoryClaimer() *MemoryClaimer {
	return &MemoryClaimer{now: time.Now, claimed: make(map[uuid.UUID]time.Time)}
}

func (c *MemoryClaimer) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for claimed, expires := range c.claimed {
		if !now.Before(expires) {
			delete(c.claimed, claimed)
		}
	}
	if _, ok := c.claimed[id]; ok {
		return false, nil
	}
	c.claimed[id] = now.Add(claimTTL)
	return true, nil
}

func (c *MemoryClaimer) Release(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.claimed, id)
	return nil
}
