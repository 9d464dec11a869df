package domain

import (
	"context"
	"errors"
)

// UpsertRequest registers a discovered feed. Re-submitting the same
// target is a no-op update, never a duplicate row.
type UpsertRequest struct {
	ATSType       string `json:"ats_type"`
	CompanySlug   string `json:"company_slug"`
	CompanyName   string `json:"company_name"`
	APIBase       string `json:"api_base"`
	DiscoveredVia string `json:"discovered_via"`
	Activate      bool   `json:"activate"`
}

// VerifyResult reports one verification sweep over inactive sources.
type VerifyResult struct {
	Verified int `json:"verified"`
	Failed   int `json:"failed"`
}

type Service interface {
	Upsert(ctx context.Context, req UpsertRequest) (*Source, error)
	List(ctx context.Context) ([]Source, error)
	// VerifyInactive probes every inactive source with a minimal fetch and
	// promotes the ones that answer.
	VerifyInactive(ctx context.Context) (VerifyResult, error)
}

var (
	ErrInvalidATSType = errors.New("invalid_ats_type")
	ErrInvalidSlug    = errors.New("invalid_company_slug")
	ErrInvalidAPIBase = errors.New("invalid_api_base")
)
