package checkout

import (
	"context"
	"fmt"
	"sync"
)

// Provider executes the payment action for one provider type. Validate is
// called with the user-collected fields before any network call; Execute
// performs the provider-specific action and returns its result payload.
// Raw payment credentials never pass through here; card entry happens on
// the provider's hosted checkout.
type Provider interface {
	Name() string
	Validate(fields map[string]string) error
	Execute(ctx context.Context, sess *Session) (*ActionResult, error)
}

// ProviderFactory builds a provider from a method's configuration mapping.
type ProviderFactory func(cfg map[string]string) Provider

// Registry maps provider types to factories. Adding a new provider is a
// single Register call instead of scattered type switches.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// Register installs a factory for the given provider type, replacing any
// previous registration.
func (r *Registry) Register(provider string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[provider] = factory
}

// New builds a provider for the given method. Unknown provider types are a
// configuration bug and reported as validation failures.
func (r *Registry) New(method *EligibleMethod) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[method.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no provider registered for type %q", ErrValidationFailed, method.Provider)
	}
	return factory(method.Config), nil
}
