package registry

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/generators"
)

// ProviderFactory builds a NameProvider bound to one generator's random source.
type ProviderFactory func(rng *rand.Rand, profile *domain.Profile) generators.NameProvider

type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]ProviderFactory),
	}
}

func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

func (r *ProviderRegistry) Get(name string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("name provider not found: %s", name)
	}
	return f, nil
}

func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const (
	ProviderStatic = "static"
	ProviderFaker  = "faker"
)

func DefaultProviderRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	r.Register(ProviderStatic, func(rng *rand.Rand, p *domain.Profile) generators.NameProvider {
		var first, last []string
		if p != nil {
			first, last = p.FirstNames, p.LastNames
		}
		return generators.NewStaticNameProvider(rng, first, last)
	})
	r.Register(ProviderFaker, func(*rand.Rand, *domain.Profile) generators.NameProvider {
		return generators.FakerNameProvider{}
	})
	return r
}
