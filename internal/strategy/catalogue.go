package strategy

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a strategy instance from caller-supplied parameters. A nil
// map yields a blank instance holding defaults only.
type Factory[T Strategy] func(params map[string]any) (T, error)

// Catalogue maps string keys to the factories of one strategy family.
type Catalogue[T Strategy] struct {
	family    string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewCatalogue creates an empty catalogue for the named family.
func NewCatalogue[T Strategy](family string) *Catalogue[T] {
	return &Catalogue[T]{
		family:    family,
		factories: make(map[string]Factory[T]),
	}
}

func (c *Catalogue[T]) Family() string { return c.family }

// Register adds a factory under key.
func (c *Catalogue[T]) Register(key string, f Factory[T]) error {
	if key == "" {
		return fmt.Errorf("%s catalogue: empty key", c.family)
	}
	if f == nil {
		return fmt.Errorf("%s catalogue: nil factory for %q", c.family, key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[key]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateRegistration, c.family, key)
	}
	c.factories[key] = f
	return nil
}

// MustRegister is Register for package setup code; it panics on error.
func (c *Catalogue[T]) MustRegister(key string, f Factory[T]) {
	if err := c.Register(key, f); err != nil {
		panic(err)
	}
}

// Get returns the factory registered under key.
func (c *Catalogue[T]) Get(key string) (Factory[T], error) {
	c.mu.RLock()
	f, ok := c.factories[key]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s %q (valid options: %s)",
			ErrUnknownStrategy, c.family, key, strings.Join(c.List(), ", "))
	}
	return f, nil
}

// Has reports whether key is registered.
func (c *Catalogue[T]) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.factories[key]
	return ok
}

// New instantiates the strategy under key with params.
func (c *Catalogue[T]) New(key string, params map[string]any) (T, error) {
	f, err := c.Get(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return f(params)
}

// Blank instantiates the strategy under key holding defaults only.
func (c *Catalogue[T]) Blank(key string) (T, error) {
	return c.New(key, nil)
}

// List returns the registered keys in sorted order.
func (c *Catalogue[T]) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.factories))
	for k := range c.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParameterInfo is the presentation form of a Spec.
type ParameterInfo struct {
	Name        string   `json:"name"`
	Kind        Kind     `json:"kind"`
	Mandatory   bool     `json:"mandatory"`
	Default     any      `json:"default,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Descriptor describes one registered strategy and its parameters.
type Descriptor struct {
	Name       string          `json:"name"`
	Family     string          `json:"family"`
	Parameters []ParameterInfo `json:"parameters"`
}

// Describe returns the descriptor of the strategy registered under key.
func (c *Catalogue[T]) Describe(key string) (Descriptor, error) {
	blank, err := c.Blank(key)
	if err != nil {
		return Descriptor{}, err
	}
	d := Descriptor{Name: key, Family: c.family}
	for _, s := range blank.Params().Specs() {
		d.Parameters = append(d.Parameters, ParameterInfo{
			Name:        s.Name,
			Kind:        s.Kind,
			Mandatory:   s.Mandatory(),
			Default:     s.Default,
			Min:         s.Min,
			Max:         s.Max,
			Description: s.Description,
		})
	}
	return d, nil
}

// DescribeAll returns descriptors for every registered key, sorted by key.
func (c *Catalogue[T]) DescribeAll() ([]Descriptor, error) {
	keys := c.List()
	out := make([]Descriptor, 0, len(keys))
	for _, k := range keys {
		d, err := c.Describe(k)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
