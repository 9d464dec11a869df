package domain

import (
	"context"

	"gorm.io/gorm"
)

// Ledger enforces the daily budgets. Both operations take the caller's
// database handle so that a consume joins the caller's transaction, and
// both must stay correct when several run processes share the same
// counter rows concurrently.
type Ledger interface {
	// TryConsumeProviderCall consumes one API-call unit for provider.
	// maxPerDay <= 0 means unlimited; nothing is recorded and the call
	// always succeeds. Returns false, without incrementing, once the
	// day's budget is spent.
	TryConsumeProviderCall(ctx context.Context, db *gorm.DB, provider string, maxPerDay int) (bool, error)

	// TryConsumeNewJobSlot consumes one unit of the global new-record
	// budget, with the same unlimited sentinel contract.
	TryConsumeNewJobSlot(ctx context.Context, db *gorm.DB, maxPerDay int) (bool, error)
}
