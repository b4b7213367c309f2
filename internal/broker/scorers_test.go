package broker

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

type countingStore struct {
	*store.MemoryStore
	mu    sync.Mutex
	loads int
}

func (s *countingStore) GetProfile(ctx context.Context, id uuid.UUID) (*store.StoredProfile, error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.MemoryStore.GetProfile(ctx, id)
}

// gatedStore blocks GetProfile until release is closed.
type gatedStore struct {
	*store.MemoryStore
	started chan struct{}
	release chan struct{}
}

func (s *gatedStore) GetProfile(ctx context.Context, id uuid.UUID) (*store.StoredProfile, error) {
	sp, err := s.MemoryStore.GetProfile(ctx, id)
	close(s.started)
	<-s.release
	return sp, err
}

func seed(t *testing.T, s store.Store, names ...string) []uuid.UUID {
	t.Helper()
	var ids []uuid.UUID
	for _, name := range names {
		sp := &store.StoredProfile{Name: name, Description: testDescription()}
		require.NoError(t, s.CreateProfile(context.Background(), sp))
		ids = append(ids, sp.ID)
	}
	return ids
}

func TestScorersCachesAndEvictsLeastRecent(t *testing.T) {
	cs := &countingStore{MemoryStore: store.NewMemoryStore()}
	ids := seed(t, cs, "a", "b", "c")
	c := NewScorers(cs, profile.DefaultCatalogues(), 2)
	ctx := context.Background()

	first, err := c.Get(ctx, ids[0])
	require.NoError(t, err)
	again, err := c.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, cs.loads)

	_, err = c.Get(ctx, ids[1])
	require.NoError(t, err)
	_, err = c.Get(ctx, ids[0])
	require.NoError(t, err)
	_, err = c.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	// b was least recently used and should be reloaded.
	_, err = c.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 4, cs.loads)
}

func TestScorersEvict(t *testing.T) {
	ms := store.NewMemoryStore()
	ids := seed(t, ms, "a")
	c := NewScorers(ms, profile.DefaultCatalogues(), 2)

	_, err := c.Get(context.Background(), ids[0])
	require.NoError(t, err)
	c.Evict(ids[0])
	assert.Equal(t, 0, c.Len())
	c.Evict(uuid.New())
}

func TestScorersNotFound(t *testing.T) {
	c := NewScorers(store.NewMemoryStore(), profile.DefaultCatalogues(), 2)
	_, err := c.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestScorersZeroSizeDisablesCache(t *testing.T) {
	ms := store.NewMemoryStore()
	ids := seed(t, ms, "a")
	c := NewScorers(ms, profile.DefaultCatalogues(), 0)
	_, err := c.Get(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestScorersEvictDuringLoadIsNotCached(t *testing.T) {
	gs := &gatedStore{
		MemoryStore: store.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	ids := seed(t, gs.MemoryStore, "a")
	c := NewScorers(gs, profile.DefaultCatalogues(), 2)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, ids[0])
		done <- err
	}()

	<-gs.started
	deleted, err := gs.DeleteProfile(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, deleted)
	c.Evict(ids[0])
	close(gs.release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, c.Len())

	// The next lookup goes back to the store and sees the deletion.
	gs.started = make(chan struct{})
	gs.release = make(chan struct{})
	close(gs.release)
	_, err = c.Get(ctx, ids[0])
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
