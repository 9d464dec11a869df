package ats

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCoversAllProviders(t *testing.T) {
	registry := ProvideRegistry(&http.Client{Timeout: time.Second})

	assert.Equal(t,
		[]string{"greenhouse", "lever", "successfactors", "workable", "workday"},
		registry.Providers(),
	)

	for _, provider := range registry.Providers() {
		f, err := registry.Fetcher(provider)
		require.NoError(t, err)
		assert.Equal(t, provider, f.Provider())
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := ProvideRegistry(&http.Client{Timeout: time.Second})

	assert.False(t, registry.ProviderExists("taleo"))
	_, err := registry.Fetcher("taleo")
	assert.Error(t, err)
}

func TestRegistryNormalizesProviderKey(t *testing.T) {
	registry := ProvideRegistry(&http.Client{Timeout: time.Second})

	assert.True(t, registry.ProviderExists("  Greenhouse "))
}

func TestPaginationFlags(t *testing.T) {
	registry := ProvideRegistry(&http.Client{Timeout: time.Second})

	paginated := map[string]bool{
		"greenhouse":     true,
		"workday":        true,
		"lever":          false,
		"workable":       false,
		"successfactors": false,
	}
	for provider, want := range paginated {
		f, err := registry.Fetcher(provider)
		require.NoError(t, err)
		assert.Equal(t, want, f.Paginated(), provider)
	}
}
