package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no refresh token exists for the subject.
	ErrNotFound = errors.New("refresh token not found")
	// ErrTokenMismatch is returned by Rotate when the presented token is not
	// the live one for the subject.
	ErrTokenMismatch = errors.New("refresh token mismatch")
	// ErrUnavailable is an infrastructure fault: Redis could not be reached
	// or the operation timed out. Distinct from all validity outcomes.
	ErrUnavailable = errors.New("refresh store unavailable")
)

const defaultOpTimeout = 2 * time.Second

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

const rotateScript = `
local cur = redis.call("GET", KEYS[1])
if not cur then
  return 0
end
if cur ~= ARGV[1] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 2
`

var rotateLua = redis.NewScript(rotateScript)

// RefreshStore persists at most one live refresh token per subject in Redis,
// with entry expiry delegated to Redis TTL (no polling sweep). Per-key
// operations are single Redis commands or Lua scripts and therefore atomic:
// a Put for subject S fully completes before any concurrent Get or Delete
// for S observes a mixed state.
type RefreshStore struct {
	redis     *redis.Client
	prefix    string
	opTimeout time.Duration
}

// NewRefreshStore describes the newrefreshstore operation and its observable behavior.
//
// NewRefreshStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRefreshStore(redisClient *redis.Client, prefix string, opTimeout time.Duration) *RefreshStore {
	if prefix == "" {
		prefix = "tg"
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	return &RefreshStore{
		redis:     redisClient,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (s *RefreshStore) key(subject string) string {
	return s.prefix + ":rt:" + subject
}

func (s *RefreshStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// Put upserts the refresh token for subject with the given TTL, overwriting
// any prior value. Last writer wins: concurrent logins by the same subject
// race and the loser's token becomes unusable once overwritten.
func (s *RefreshStore) Put(ctx context.Context, subject, token string, ttl time.Duration) error {
	if subject == "" {
		return errors.New("empty subject")
	}
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(subject), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Get returns the live refresh token for subject, or [ErrNotFound] when the
// entry is absent or its TTL has lapsed.
func (s *RefreshStore) Get(ctx context.Context, subject string) (string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	token, err := s.redis.Get(ctx, s.key(subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return token, nil
}

// Delete removes the refresh token for subject. Deleting an absent entry is
// not an error.
func (s *RefreshStore) Delete(ctx context.Context, subject string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.redis.Del(ctx, s.key(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Rotate atomically replaces the live refresh token for subject with next,
// but only when presented equals the live value. A mismatch means the
// presented token was already rotated away (reuse or a lost race) and
// returns [ErrTokenMismatch]; an absent entry returns [ErrNotFound].
func (s *RefreshStore) Rotate(ctx context.Context, subject, presented, next string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	status, err := rotateLua.Run(ctx, s.redis,
		[]string{s.key(subject)},
		presented, next, ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch status {
	case rotateStatusRotated:
		return nil
	case rotateStatusMismatch:
		return ErrTokenMismatch
	default:
		return ErrNotFound
	}
}
