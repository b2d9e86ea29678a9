package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cohort/pkg/domain"
)

// Catalog holds named models in memory. Models are treated as read-only once
// registered; callers must not mutate a model returned by Get.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]*domain.Model
}

// NewCatalog creates a catalog from the given models, keyed by Model.Name.
func NewCatalog(models ...*domain.Model) (*Catalog, error) {
	c := &Catalog{models: make(map[string]*domain.Model)}
	for _, m := range models {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a model. Names must be unique.
func (c *Catalog) Register(m *domain.Model) error {
	if m == nil || m.Name == "" {
		return fmt.Errorf("model missing name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.models[m.Name]; dup {
		return fmt.Errorf("model %q already registered", m.Name)
	}
	c.models[m.Name] = m
	return nil
}

// Get returns the model registered under name.
func (c *Catalog) Get(name string) (*domain.Model, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
	}
	return m, nil
}

// Names lists registered model names in lexical order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
