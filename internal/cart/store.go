package cart

import (
	"context"
	"sync"
	"time"

	"lastbite/internal/model"

	"github.com/rs/zerolog"
)

// Store owns one cart per user session, created lazily on first access.
// When a snapshotter is configured, carts are restored from their persisted
// snapshot on first access and written through best-effort after every
// mutation; persistence failures are logged and never surfaced, since the
// in-memory cart remains authoritative.
type Store struct {
	mu     sync.Mutex
	carts  map[string]*Cart
	snap   Snapshotter
	logger zerolog.Logger
}

// NewStore creates a cart store. The snapshotter may be nil, in which case
// carts are memory-only and lost on process restart.
func NewStore(snap Snapshotter, logger zerolog.Logger) *Store {
	return &Store{
		carts:  make(map[string]*Cart),
		snap:   snap,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// Get returns the user's cart, creating it if necessary.
func (s *Store) Get(ctx context.Context, userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[userID]; ok {
		return c
	}

	var items []model.LineItem
	if s.snap != nil {
		restored, err := s.snap.Load(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to restore cart snapshot")
		} else if len(restored) > 0 {
			items = restored
			s.logger.Debug().
				Str("user_id", userID).
				Int("line_items", len(restored)).
				Msg("cart restored from snapshot")
		}
	}

	c := restore(items, s.persistFunc(userID))
	s.carts[userID] = c
	return c
}

// persistFunc builds the write-through hook for a user's cart. Nil when no
// snapshotter is configured so carts skip the callback entirely.
func (s *Store) persistFunc(userID string) func([]model.LineItem) {
	if s.snap == nil {
		return nil
	}
	return func(items []model.LineItem) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var err error
		if len(items) == 0 {
			err = s.snap.Delete(ctx, userID)
		} else {
			err = s.snap.Save(ctx, userID, items)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to persist cart snapshot")
		}
	}
}
