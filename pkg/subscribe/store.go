package subscribe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
)

// Store records subscriber addresses.
type Store interface {
	// Add stores email and reports whether it was new.
	Add(ctx context.Context, email string, at time.Time) (bool, error)

	// Has reports whether email is stored.
	Has(ctx context.Context, email string) (bool, error)

	Close() error
}

// LogStore logs subscriptions and keeps them in memory for the process
// lifetime.
type LogStore struct {
	mu     sync.Mutex
	emails map[string]time.Time
	logger zerolog.Logger
}

// NewLogStore creates a LogStore.
func NewLogStore(logger zerolog.Logger) *LogStore {
	return &LogStore{
		emails: make(map[string]time.Time),
		logger: logger.With().Str("store", "log").Logger(),
	}
}

// Add implements Store.
func (s *LogStore) Add(ctx context.Context, email string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email]; ok {
		return false, nil
	}
	s.emails[email] = at
	s.logger.Info().Str("email", email).Time("at", at).Msg("Newsletter subscription")
	return true, nil
}

// Has implements Store.
func (s *LogStore) Has(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.emails[email]
	return ok, nil
}

// Close implements Store.
func (s *LogStore) Close() error { return nil }

// Redis keys used by RedisStore.
const (
	RedisSetKey  = "newsletter:subscribers"
	RedisHashKey = "newsletter:subscribed_at"
)

// RedisStore keeps subscribers in a redis set, with the first subscription
// time in a hash.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a RedisStore. The client is owned by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: client}
}

// Add implements Store.
func (s *RedisStore) Add(ctx context.Context, email string, at time.Time) (bool, error) {
	pipe := s.redis.TxPipeline()
	added := pipe.SAdd(ctx, RedisSetKey, email)
	pipe.HSetNX(ctx, RedisHashKey, email, at.UTC().Format(time.RFC3339))

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to store subscriber in redis: %w", err)
	}
	return added.Val() > 0, nil
}

// Has implements Store.
func (s *RedisStore) Has(ctx context.Context, email string) (bool, error) {
	ok, err := s.redis.SIsMember(ctx, RedisSetKey, email).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read subscriber from redis: %w", err)
	}
	return ok, nil
}

// Close implements Store.
func (s *RedisStore) Close() error { return nil }

const levelDBPrefix = "sub:"

// LevelDBStore keeps subscribers in a local LevelDB database, one key per
// address with the subscription time as value.
type LevelDBStore struct {
	mu sync.Mutex
	db *leveldb.DB
}

// OpenLevelDBStore opens or creates the database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscriber db %s: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

// Add implements Store.
func (s *LevelDBStore) Add(ctx context.Context, email string, at time.Time) (bool, error) {
	key := []byte(levelDBPrefix + email)

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.db.Has(key, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read subscriber: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := s.db.Put(key, []byte(at.UTC().Format(time.RFC3339)), nil); err != nil {
		return false, fmt.Errorf("failed to store subscriber: %w", err)
	}
	return true, nil
}

// Has implements Store.
func (s *LevelDBStore) Has(ctx context.Context, email string) (bool, error) {
	ok, err := s.db.Has([]byte(levelDBPrefix+email), nil)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return false, fmt.Errorf("failed to read subscriber: %w", err)
	}
	return ok, nil
}

// SubscribedAt returns when email was first stored.
func (s *LevelDBStore) SubscribedAt(email string) (time.Time, error) {
	b, err := s.db.Get([]byte(levelDBPrefix+email), nil)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, string(b))
}

// Close implements Store.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
