// Package domain defines the provider-agnostic posting shape and the
// contract every ATS integration implements.
package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Posting is one job advertisement as returned by a provider, already
// normalized. It is transient: adapters build it, the upsert engine
// consumes it, nothing persists it directly.
type Posting struct {
	ATSJobID     string
	Title        string
	URL          string
	LocationRaw  string
	WorkplaceRaw string
	PostedAt     *time.Time
	RawJSON      json.RawMessage
	RawText      string
	SalaryText   string
}

// Page is the uniform pagination cursor. Non-paginated providers ignore
// it; offset-based providers derive offset = (Number-1) * Size.
type Page struct {
	Number int
	Size   int
}

// Fetcher fetches one unit of work from a provider board. An empty slice
// signals "no more pages" for paginated providers. Fetchers never retry:
// a transport or parse failure surfaces as a single error.
type Fetcher interface {
	Provider() string
	Paginated() bool
	FetchPage(ctx context.Context, apiBase string, page Page) ([]Posting, error)
}

// Detail is the payload of a per-job detail call.
type Detail struct {
	RawText    string
	SalaryText string
}

// DetailFetcher is implemented by providers whose list payload may lack
// the description text.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, apiBase, atsJobID string) (Detail, error)
}

var (
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrBadPayload       = errors.New("bad_payload")
)
