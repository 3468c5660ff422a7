package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is an exported constant or variable used by the session manager.
var ErrUnavailable = errors.New("redis unavailable")

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a Redis-backed payload store keyed by prefix + session id. All
// methods are safe for concurrent use; single-key atomicity is Redis's own.
//
//	Performance: every method is exactly 1 Redis command.
type Store struct {
	cfg    Config
	prefix string

	dial   sync.Once
	owned  bool
	client redis.UniversalClient
}

// New creates a [Store] that dials cfg.Addr lazily on first use. The dial is
// idempotent under concurrent first-use.
func New(cfg Config, prefix string) *Store {
	return &Store{
		cfg:    cfg,
		prefix: prefix,
	}
}

// NewWithClient creates a [Store] over an existing shared client. The caller
// keeps ownership of the client's lifecycle.
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) redis() redis.UniversalClient {
	s.dial.Do(func() {
		if s.client == nil {
			s.client = redis.NewClient(&redis.Options{
				Addr:     s.cfg.Addr,
				Password: s.cfg.Password,
				DB:       s.cfg.DB,
			})
			s.owned = true
		}
	})
	return s.client
}

// Get retrieves the payload stored for sessionID. A missing key is reported as
// found == false with a nil error; only infrastructure failures return errors.
func (s *Store) Get(ctx context.Context, sessionID string) (payload string, found bool, err error) {
	payload, err = s.redis().Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return payload, true, nil
}

// Set unconditionally overwrites the payload for sessionID with no TTL. Callers
// that need expiry follow up with [Store.Expire].
func (s *Store) Set(ctx context.Context, sessionID, payload string) error {
	if err := s.redis().Set(ctx, s.key(sessionID), payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Expire sets or refreshes the TTL on sessionID's entry. An absent key is
// ignored: it only affects cleanup timing, never correctness.
func (s *Store) Expire(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.redis().Expire(ctx, s.key(sessionID), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes sessionID's entry. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis().Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis().Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}

// Close releases the underlying client. Only meaningful for lazily dialed
// stores; client-injected stores leave lifecycle to the caller.
func (s *Store) Close() error {
	if !s.owned || s.client == nil {
		return nil
	}
	return s.client.Close()
}
