package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
)

// ErrNameTaken is returned when a profile name is already stored.
var ErrNameTaken = errors.New("profile name already exists")

// StoredProfile is a named, validated profile description.
type StoredProfile struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Notes       string              `json:"notes,omitempty"`
	Description profile.Description `json:"profile"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ProfileFilter struct {
	NamePrefix string
	Limit      int
	Offset     int
}

// Store persists scoring profiles. Lookups of unknown ids return nil, nil.
type Store interface {
	CreateProfile(ctx context.Context, p *StoredProfile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*StoredProfile, error)
	GetProfileByName(ctx context.Context, name string) (*StoredProfile, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]*StoredProfile, error)
	// DeleteProfile reports whether a profile was removed.
	DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error)
	Close() error
}

const defaultListLimit = 100

func (f ProfileFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// likeEscape is the ESCAPE character used by prefix queries on every SQL
// backend. MySQL treats a backslash inside a string literal as an escape, so
// a plain character is used instead.
const likeEscape = "!"

// likePrefix turns prefix into a LIKE pattern that matches it literally.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(prefix) + "%"
}

// decodeDescription parses a stored profile document into p. Numbers keep
// their integer form so strategies with integer parameters reload cleanly.
func decodeDescription(p *StoredProfile, data []byte) (*StoredProfile, error) {
	desc, err := profile.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", p.ID, err)
	}
	p.Description = desc
	return p, nil
}
