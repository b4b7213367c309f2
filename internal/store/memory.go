package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps profiles in process. Stored descriptions are copied on
// the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*StoredProfile
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[uuid.UUID]*StoredProfile)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateProfile(_ context.Context, p *StoredProfile) error {
	stored, err := copyProfile(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: %q", ErrNameTaken, p.Name)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	stored.ID, stored.CreatedAt, stored.UpdatedAt = p.ID, now, now
	s.profiles[p.ID] = stored
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, id uuid.UUID) (*StoredProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return copyProfile(p)
}

func (s *MemoryStore) GetProfileByName(_ context.Context, name string) (*StoredProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Name == name {
			return copyProfile(p)
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListProfiles(_ context.Context, filter ProfileFilter) ([]*StoredProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*StoredProfile
	for _, p := range s.profiles {
		if strings.HasPrefix(p.Name, filter.NamePrefix) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if limit := filter.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*StoredProfile, 0, len(matched))
	for _, p := range matched {
		c, err := copyProfile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) DeleteProfile(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return false, nil
	}
	delete(s.profiles, id)
	return true, nil
}

// copyProfile deep-copies p through the same JSON form the SQL stores use.
func copyProfile(p *StoredProfile) (*StoredProfile, error) {
	data, err := json.Marshal(p.Description)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	c := *p
	return decodeDescription(&c, data)
}
