package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lastbite/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Snapshotter persists cart snapshots underneath the store contract. All cart
// invariants live above this interface; implementations only see opaque line
// item slices.
type Snapshotter interface {
	// Save persists the user's cart snapshot.
	Save(ctx context.Context, userID string, items []model.LineItem) error

	// Load returns the user's persisted snapshot, or nil if none exists.
	Load(ctx context.Context, userID string) ([]model.LineItem, error)

	// Delete removes the user's persisted snapshot.
	Delete(ctx context.Context, userID string) error

	// Close releases the underlying resources.
	Close() error
}

const snapshotKeyPrefix = "cart:"

// redisSnapshotter stores cart snapshots as JSON values in redis with a TTL,
// so abandoned carts age out on their own.
type redisSnapshotter struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisSnapshotter connects to redis and returns a Snapshotter backed by
// it. The connection is verified with a ping before use.
func NewRedisSnapshotter(ctx context.Context, addr, password string, db int, ttl time.Duration, logger zerolog.Logger) (Snapshotter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Int("db", db).Msg("redis cart snapshotter initialised")

	return &redisSnapshotter{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-snapshotter").Logger(),
	}, nil
}

func (s *redisSnapshotter) Save(ctx context.Context, userID string, items []model.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKeyPrefix+userID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

func (s *redisSnapshotter) Load(ctx context.Context, userID string) ([]model.LineItem, error) {
	val, err := s.client.Get(ctx, snapshotKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var items []model.LineItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("discarding corrupt cart snapshot")
		return nil, nil
	}
	return items, nil
}

func (s *redisSnapshotter) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, snapshotKeyPrefix+userID).Err()
}

func (s *redisSnapshotter) Close() error {
	return s.client.Close()
}
