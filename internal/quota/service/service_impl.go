package service

import (
	"context"

	"github.com/openhire/jobfeed/internal/clock"
	quotadomain "github.com/openhire/jobfeed/internal/quota/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerParam struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

type Ledger struct {
	log   *zap.Logger
	clock clock.Clock
}

func NewLedger(p LedgerParam) quotadomain.Ledger {
	return &Ledger{
		log:   p.Log.Named("quota.ledger"),
		clock: p.Clock,
	}
}

func (l *Ledger) day() string {
	return l.clock.Now().UTC().Format("2006-01-02")
}

// TryConsumeProviderCall implements the provider-call budget. The guarded
// UPDATE is the serialization point: it increments only while the counter
// is below the cap, and the affected-row count decides the outcome. A
// read-then-write pair would race between concurrent runs.
func (l *Ledger) TryConsumeProviderCall(ctx context.Context, db *gorm.DB, provider string, maxPerDay int) (bool, error) {
	if maxPerDay <= 0 {
		return true, nil
	}

	day := l.day()

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&quotadomain.ProviderDailyUsage{Day: day, ATSType: provider}).Error
	if err != nil {
		return false, err
	}

	res := db.WithContext(ctx).Exec(
		`UPDATE api_daily_usage
		 SET calls = calls + 1
		 WHERE day = ? AND ats_type = ? AND calls < ?`,
		day, provider, maxPerDay,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		l.log.Debug("provider call budget exhausted",
			zap.String("provider", provider),
			zap.String("day", day),
			zap.Int("max_per_day", maxPerDay),
		)
		return false, nil
	}
	return true, nil
}

// TryConsumeNewJobSlot implements the global new-record budget with the
// same insert-if-absent plus guarded-increment shape.
func (l *Ledger) TryConsumeNewJobSlot(ctx context.Context, db *gorm.DB, maxPerDay int) (bool, error) {
	if maxPerDay <= 0 {
		return true, nil
	}

	day := l.day()

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&quotadomain.NewJobDaily{Day: day}).Error
	if err != nil {
		return false, err
	}

	res := db.WithContext(ctx).Exec(
		`UPDATE job_daily_new
		 SET created = created + 1
		 WHERE day = ? AND created < ?`,
		day, maxPerDay,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		l.log.Debug("new job budget exhausted",
			zap.String("day", day),
			zap.Int("max_per_day", maxPerDay),
		)
		return false, nil
	}
	return true, nil
}
