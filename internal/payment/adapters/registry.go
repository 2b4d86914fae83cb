package adapters

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nahomjim91/spice-marketplace/internal/payment/domain"
)

// Registry maps PAYMENT_PROVIDER values to gateway factories. The first factory
// registered serves checkouts when no provider is configured.
type Registry struct {
	byName map[string]domain.AdapterFactory
	names  []string
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	r := &Registry{byName: map[string]domain.AdapterFactory{}}
	for _, factory := range factories {
		r.Register(factory)
	}
	return r
}

// Register adds factory under its lower-cased provider name, replacing any
// earlier factory with the same name.
func (r *Registry) Register(factory domain.AdapterFactory) {
	if factory == nil {
		return
	}
	name := providerName(factory.Provider())
	if name == "" {
		return
	}
	if _, ok := r.byName[name]; !ok {
		r.names = append(r.names, name)
	}
	r.byName[name] = factory
}

// Providers lists registered names in registration order.
func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.names)
}

// Resolve finds the factory for provider. A blank provider picks the default.
func (r *Registry) Resolve(provider string) (domain.AdapterFactory, error) {
	if r == nil || len(r.names) == 0 {
		return nil, fmt.Errorf("%w: no gateways registered", domain.ErrProviderNotFound)
	}
	name := providerName(provider)
	if name == "" {
		name = r.names[0]
	}
	factory, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", domain.ErrProviderNotFound, name, strings.Join(r.names, ", "))
	}
	return factory, nil
}

func providerName(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
