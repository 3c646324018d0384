package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deletes the key only while it still carries the caller's token.
const streakUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// ErrStreakLocked is returned when another writer holds one of the records.
var ErrStreakLocked = errors.New("streak record locked")

type streakLock struct {
	client redis.UniversalClient
	unlock *redis.Script
	ttl    time.Duration
}

func newStreakLock(client redis.UniversalClient, ttl time.Duration) *streakLock {
	if client == nil {
		return nil
	}
	return &streakLock{
		client: client,
		unlock: redis.NewScript(streakUnlockScript),
		ttl:    ttl,
	}
}

type heldLock struct {
	key   string
	token string
}

// StreakLease is the set of record locks held by one streak write.
// A nil or empty lease releases nothing.
type StreakLease struct {
	lock *streakLock
	log  *zap.Logger
	held []heldLock
}

// Held returns the lock keys in acquisition order.
func (s *StreakLease) Held() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.held))
	for _, h := range s.held {
		keys = append(keys, h.key)
	}
	return keys
}

// Release drops the locks in reverse order.
func (s *StreakLease) Release(ctx context.Context) {
	if s == nil || s.lock == nil {
		return
	}
	for i := len(s.held) - 1; i >= 0; i-- {
		h := s.held[i]
		if err := s.lock.unlock.Run(ctx, s.lock.client, []string{h.key}, h.token).Err(); err != nil {
			s.log.Warn("failed to release streak lock", zap.String("key", h.key), zap.Error(err))
		}
	}
	s.held = nil
}

// LockStreaks locks every record in recordIDs, in sorted order so two
// writers touching the same records cannot deadlock. A record held
// elsewhere returns ErrStreakLocked. Without Redis, or when Redis fails,
// an empty lease is returned and the database row locks guard the write.
func (l *ActivityLimiter) LockStreaks(ctx context.Context, recordIDs []string) (*StreakLease, error) {
	if l == nil || l.locks == nil {
		return &StreakLease{}, nil
	}

	lease := &StreakLease{lock: l.locks, log: l.log}
	for _, key := range streakLockKeys(recordIDs) {
		token := uuid.NewString()
		ok, err := l.locks.client.SetNX(ctx, key, token, l.locks.ttl).Result()
		if err != nil {
			l.log.Warn("streak lock unavailable, relying on row lock", zap.String("key", key), zap.Error(err))
			lease.Release(context.WithoutCancel(ctx))
			return &StreakLease{}, nil
		}
		if !ok {
			lease.Release(context.WithoutCancel(ctx))
			return nil, ErrStreakLocked
		}
		lease.held = append(lease.held, heldLock{key: key, token: token})
	}
	return lease, nil
}

func streakLockKeys(recordIDs []string) []string {
	ids := slices.Clone(recordIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		keys = append(keys, fmt.Sprintf(keyStreakLock, id))
	}
	return keys
}
