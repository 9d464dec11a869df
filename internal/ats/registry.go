// Package ats assembles the provider integrations behind a closed registry.
// Adding a provider is adding a Fetcher implementation, not editing a
// dispatch chain.
package ats

import (
	"sort"
	"strings"

	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
)

type Registry struct {
	fetchers map[string]atsdomain.Fetcher
}

func NewRegistry(fetchers ...atsdomain.Fetcher) *Registry {
	registry := &Registry{fetchers: map[string]atsdomain.Fetcher{}}
	for _, f := range fetchers {
		if f == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(f.Provider()))
		if provider == "" {
			continue
		}
		registry.fetchers[provider] = f
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := r.fetchers[provider]
	return ok
}

func (r *Registry) Fetcher(provider string) (atsdomain.Fetcher, error) {
	if r == nil {
		return nil, atsdomain.ErrProviderNotFound
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	f, ok := r.fetchers[provider]
	if !ok {
		return nil, atsdomain.ErrProviderNotFound
	}
	return f, nil
}

func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.fetchers))
	for p := range r.fetchers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
