package adapters

import (
	"errors"
	"testing"

	"github.com/nahomjim91/spice-marketplace/internal/payment/adapters/simulated"
	"github.com/nahomjim91/spice-marketplace/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedFactory struct {
	name string
}

func (f namedFactory) Provider() string { return f.name }

func (f namedFactory) NewAdapter(domain.AdapterConfig) (domain.Gateway, error) {
	return nil, errors.New("gateway offline")
}

func TestRegistryResolvesProviderCaseInsensitively(t *testing.T) {
	registry := NewRegistry(simulated.NewFactory(), nil, namedFactory{name: "  "})

	assert.Equal(t, []string{"simulated"}, registry.Providers())
	factory, err := registry.Resolve(" SIMULATED ")
	require.NoError(t, err)
	gw, err := factory.NewAdapter(domain.AdapterConfig{SuccessRate: 1})
	require.NoError(t, err)
	assert.NotNil(t, gw)
}

func TestRegistryBlankProviderUsesFirstRegistered(t *testing.T) {
	registry := NewRegistry(simulated.NewFactory(), namedFactory{name: "Telebirr"})

	factory, err := registry.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "simulated", factory.Provider())

	factory, err = registry.Resolve("telebirr")
	require.NoError(t, err)
	assert.Equal(t, "Telebirr", factory.Provider())
	assert.Equal(t, []string{"simulated", "telebirr"}, registry.Providers())
}

func TestRegistryReplacesDuplicateProvider(t *testing.T) {
	registry := NewRegistry(namedFactory{name: "simulated"})
	registry.Register(simulated.NewFactory())

	assert.Equal(t, []string{"simulated"}, registry.Providers())
	factory, err := registry.Resolve("simulated")
	require.NoError(t, err)
	_, ok := factory.(*simulated.Factory)
	assert.True(t, ok)
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(simulated.NewFactory())

	_, err := registry.Resolve("stripe")
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
	assert.ErrorContains(t, err, `"stripe" (available: simulated)`)

	var empty *Registry
	assert.Nil(t, empty.Providers())
	_, err = empty.Resolve("simulated")
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)

	_, err = NewRegistry().Resolve("")
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}
