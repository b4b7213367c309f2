package broker

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

// ErrProfileNotFound is returned when a stored profile id does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// Scorers hands out built scorers for stored profiles, keeping the most
// recently used ones. Concurrent misses for one profile share a single load.
type Scorers struct {
	store store.Store
	cats  profile.Catalogues
	opts  []scoring.Option
	size  int

	mu      sync.Mutex
	entries map[uuid.UUID]*list.Element
	order   *list.List
	// evictions counts Evict calls per id; a load started before an
	// eviction must not repopulate the cache.
	evictions map[uuid.UUID]uint64
	loads     singleflight.Group
}

type cachedScorer struct {
	id     uuid.UUID
	scorer *scoring.Scorer
}

// NewScorers caches up to size scorers. A size below one disables caching.
func NewScorers(s store.Store, cats profile.Catalogues, size int, opts ...scoring.Option) *Scorers {
	return &Scorers{
		store:   s,
		cats:    cats,
		opts:    opts,
		size:    size,
		entries:   make(map[uuid.UUID]*list.Element),
		order:     list.New(),
		evictions: make(map[uuid.UUID]uint64),
	}
}

// Get returns the scorer for a stored profile.
func (c *Scorers) Get(ctx context.Context, id uuid.UUID) (*scoring.Scorer, error) {
	c.mu.Lock()
	if el, ok := c.entries[id]; ok {
		c.order.MoveToFront(el)
		sc := el.Value.(*cachedScorer).scorer
		c.mu.Unlock()
		return sc, nil
	}
	gen := c.evictions[id]
	c.mu.Unlock()

	v, err, _ := c.loads.Do(id.String(), func() (interface{}, error) {
		sp, err := c.store.GetProfile(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", id, err)
		}
		if sp == nil {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		sc, err := c.Inline(sp.Description)
		if err != nil {
			return nil, err
		}
		c.put(id, sc, gen)
		return sc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*scoring.Scorer), nil
}

// Inline validates and builds a scorer for a profile that is not stored.
// The result is not cached.
func (c *Scorers) Inline(desc profile.Description) (*scoring.Scorer, error) {
	p, err := profile.Validate(desc, c.cats)
	if err != nil {
		return nil, err
	}
	sc := scoring.NewScorer(p, c.cats, c.opts...)
	if err := sc.Build(); err != nil {
		return nil, err
	}
	return sc, nil
}

// put caches sc unless id was evicted since generation gen was read.
func (c *Scorers) put(id uuid.UUID, sc *scoring.Scorer, gen uint64) {
	if c.size < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.evictions[id] != gen {
		return
	}
	if el, ok := c.entries[id]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cachedScorer).scorer = sc
		return
	}
	c.entries[id] = c.order.PushFront(&cachedScorer{id: id, scorer: sc})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cachedScorer).id)
	}
}

// Evict drops a cached scorer, e.g. after its profile was deleted. Loads
// already in flight for id still answer their callers but are not cached.
func (c *Scorers) Evict(id uuid.UUID) {
	c.loads.Forget(id.String())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictions[id]++
	if el, ok := c.entries[id]; ok {
		c.order.Remove(el)
		delete(c.entries, id)
	}
}

func (c *Scorers) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
