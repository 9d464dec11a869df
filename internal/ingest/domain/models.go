// Package domain defines the ingestion run contract.
package domain

import "context"

// RunResult is the best-effort summary of one run across all active
// sources. JobsCreated counts only newly created rows, never updates.
type RunResult struct {
	SourcesOK     int `json:"sources_ok"`
	JobsCreated   int `json:"jobs_created"`
	JobsProcessed int `json:"jobs_processed"`
}

// UpsertOutcome reports what one posting did to the store.
type UpsertOutcome int

const (
	// OutcomeSkipped means no row was written: the posting had no usable
	// id, or the new-record budget was exhausted. The posting will be
	// retried on the next run since the source re-fetches it.
	OutcomeSkipped UpsertOutcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// Service drives one ingestion run. Run never fails for ordinary
// operational trouble (rate limits, one bad source); it errors only on
// caller misuse detected before any source is touched.
type Service interface {
	Run(ctx context.Context) (RunResult, error)
}
