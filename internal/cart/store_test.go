package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"lastbite/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSnapshotter is an in-memory Snapshotter for exercising the store's
// persistence layering without redis.
type fakeSnapshotter struct {
	mu        sync.Mutex
	snapshots map[string][]model.LineItem
	saves     int
	deletes   int
	loadErr   error
}

func newFakeSnapshotter() *fakeSnapshotter {
	return &fakeSnapshotter{snapshots: make(map[string][]model.LineItem)}
}

func (f *fakeSnapshotter) Save(_ context.Context, userID string, items []model.LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[userID] = items
	f.saves++
	return nil
}

func (f *fakeSnapshotter) Load(_ context.Context, userID string) ([]model.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.snapshots[userID], nil
}

func (f *fakeSnapshotter) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snapshots, userID)
	f.deletes++
	return nil
}

func (f *fakeSnapshotter) Close() error { return nil }

func TestStore_GetCreatesCartLazily(t *testing.T) {
	s := NewStore(nil, zerolog.Nop())
	ctx := context.Background()

	c1 := s.Get(ctx, "user-1")
	c2 := s.Get(ctx, "user-1")
	other := s.Get(ctx, "user-2")

	assert.Same(t, c1, c2)
	assert.NotSame(t, c1, other)
	assert.Equal(t, 0, c1.ItemCount())
}

func TestStore_WriteThroughPersistence(t *testing.T) {
	snap := newFakeSnapshotter()
	s := NewStore(snap, zerolog.Nop())
	ctx := context.Background()

	c := s.Get(ctx, "user-1")
	c.Add(offer("A", 4.50))
	c.Add(offer("A", 4.50))

	snap.mu.Lock()
	persisted := snap.snapshots["user-1"]
	saves := snap.saves
	snap.mu.Unlock()

	require.Len(t, persisted, 1)
	assert.Equal(t, 2, persisted[0].Quantity)
	assert.Equal(t, 2, saves)
}

func TestStore_ClearDeletesSnapshot(t *testing.T) {
	snap := newFakeSnapshotter()
	s := NewStore(snap, zerolog.Nop())
	ctx := context.Background()

	c := s.Get(ctx, "user-1")
	c.Add(offer("A", 4.50))
	c.Clear()

	snap.mu.Lock()
	defer snap.mu.Unlock()
	assert.NotContains(t, snap.snapshots, "user-1")
	assert.Equal(t, 1, snap.deletes)
}

func TestStore_RestoresFromSnapshot(t *testing.T) {
	snap := newFakeSnapshotter()
	snap.snapshots["user-1"] = []model.LineItem{
		{Offer: offer("A", 6.00), Quantity: 3, PriceMinor: 600},
	}
	s := NewStore(snap, zerolog.Nop())

	c := s.Get(context.Background(), "user-1")

	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, int64(1800), c.TotalMinor())
}

func TestStore_SnapshotLoadFailureFallsBackToEmptyCart(t *testing.T) {
	snap := newFakeSnapshotter()
	snap.loadErr = assert.AnError
	s := NewStore(snap, zerolog.Nop())

	c := s.Get(context.Background(), "user-1")

	assert.Equal(t, 0, c.ItemCount())
}

// blockingSnapshotter parks inside Save until released, to catch snapshot
// writes running under the cart mutex.
type blockingSnapshotter struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSnapshotter) Save(context.Context, string, []model.LineItem) error {
	close(b.entered)
	<-b.release
	return nil
}

func (b *blockingSnapshotter) Load(context.Context, string) ([]model.LineItem, error) {
	return nil, nil
}

func (b *blockingSnapshotter) Delete(context.Context, string) error { return nil }
func (b *blockingSnapshotter) Close() error                         { return nil }

func TestStore_SlowSnapshotWriteDoesNotBlockCartReads(t *testing.T) {
	snap := &blockingSnapshotter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewStore(snap, zerolog.Nop())
	c := s.Get(context.Background(), "user-1")

	addDone := make(chan struct{})
	go func() {
		c.Add(offer("A", 4.99))
		close(addDone)
	}()

	<-snap.entered

	reads := make(chan []model.LineItem, 1)
	go func() { reads <- c.Items() }()

	select {
	case items := <-reads:
		require.Len(t, items, 1)
		assert.Equal(t, "A", items[0].Offer.ID)
	case <-time.After(time.Second):
		t.Fatal("cart read blocked behind an in-flight snapshot write")
	}

	close(snap.release)
	<-addDone
}
