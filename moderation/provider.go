package moderation

import (
	"context"
	"fmt"
)

// ClassifierProvider wraps one external content classifier. Each call is
// stateless from the engine's perspective; a provider's internal retry
// policy is its own concern. An error return signals transport, auth, or
// quota failure, never content state.
type ClassifierProvider interface {
	Name() string
	Moderate(ctx context.Context, text string) (*ProviderResult, error)
}

type ProviderFactory func() (ClassifierProvider, error)

// Registry maps provider names to factories. Enabled providers are selected
// from it by name at startup, per policy, rather than constructed behind
// runtime conditionals.
type Registry struct {
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	r.factories[name] = f
}

func (r *Registry) Build(names []string) ([]ClassifierProvider, error) {
	out := make([]ClassifierProvider, 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		p, err := f()
		if err != nil {
			return nil, fmt.Errorf("building provider %s: %w", name, err)
		}
		out = append(out, p)
	}
	return out, nil
}
