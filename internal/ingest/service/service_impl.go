package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/openhire/jobfeed/internal/ats"
	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
	"github.com/openhire/jobfeed/internal/clock"
	"github.com/openhire/jobfeed/internal/config"
	ingestdomain "github.com/openhire/jobfeed/internal/ingest/domain"
	"github.com/openhire/jobfeed/internal/observability/metrics"
	quotadomain "github.com/openhire/jobfeed/internal/quota/domain"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Registry *ats.Registry
	Ledger   quotadomain.Ledger
	Quota    *config.QuotaHolder
	Metrics  *metrics.Metrics
	Sources  sourcedomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	registry *ats.Registry
	ledger   quotadomain.Ledger
	quota    *config.QuotaHolder
	metrics  *metrics.Metrics
	sources  sourcedomain.Repository
}

func NewService(p ServiceParam) ingestdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ingest.service"),
		clock:    p.Clock,
		registry: p.Registry,
		ledger:   p.Ledger,
		quota:    p.Quota,
		metrics:  p.Metrics,
		sources:  p.Sources,
	}
}

// sourceReport accumulates one source's counters inside its transaction.
// It is merged into the run totals only after the transaction commits, so
// a rolled-back source contributes nothing.
type sourceReport struct {
	processed    int
	created      int
	hitRunCap    bool
	rateLimitMsg string
}

// sourceRun carries per-source state that outlives a single page.
type sourceRun struct {
	report     sourceReport
	stopDetail bool
}

// Run ingests every active source in turn. Each source gets its own
// transaction; a failing source is recorded on last_error and never stops
// its siblings. The run halts early only when the per-run fetch cap is hit.
func (s *Service) Run(ctx context.Context) (ingestdomain.RunResult, error) {
	var res ingestdomain.RunResult

	limits := s.quota.Get()
	if limits.MaxFetchPerRun < 1 {
		return res, fmt.Errorf("max fetch per run must be at least 1, got %d", limits.MaxFetchPerRun)
	}

	log := s.log.With(zap.String("run_id", ulid.Make().String()))

	sources, err := s.sources.ListActive(ctx, s.db)
	if err != nil {
		return res, err
	}

	log.Info("ingestion run started",
		zap.Int("active_sources", len(sources)),
		zap.Int("max_fetch_per_run", limits.MaxFetchPerRun),
	)

	for i := range sources {
		src := &sources[i]

		report, ok := s.processSource(ctx, log, src, limits, res.JobsProcessed)
		if ok {
			res.SourcesOK++
			res.JobsCreated += report.created
			res.JobsProcessed += report.processed
			if report.created > 0 {
				s.metrics.JobsCreated.Add(float64(report.created))
			}
			if report.processed > 0 {
				s.metrics.JobsProcessed.Add(float64(report.processed))
			}
		}
		if report.hitRunCap {
			log.Info("per-run fetch cap reached, stopping run",
				zap.Int("jobs_processed", res.JobsProcessed),
			)
			break
		}
	}

	s.metrics.RunsTotal.Inc()
	log.Info("ingestion run finished",
		zap.Int("sources_ok", res.SourcesOK),
		zap.Int("jobs_created", res.JobsCreated),
		zap.Int("jobs_processed", res.JobsProcessed),
	)
	return res, nil
}

// processSource runs one source inside a transaction and reports whether
// it counts as ok. On failure the transaction is rolled back and the
// reason is saved to last_error in a separate write.
func (s *Service) processSource(
	ctx context.Context,
	log *zap.Logger,
	src *sourcedomain.Source,
	limits config.IngestConfig,
	alreadyProcessed int,
) (sourceReport, bool) {
	slog := log.With(
		zap.Int64("source_id", int64(src.ID)),
		zap.String("ats_type", src.ATSType),
		zap.String("company_slug", src.CompanySlug),
	)

	fetcher, err := s.registry.Fetcher(src.ATSType)
	if err != nil {
		s.metrics.SourceErrors.Inc()
		s.recordError(ctx, slog, src, err)
		return sourceReport{}, false
	}

	// The health fields are written on a copy so a failed save or commit
	// never leaves a fresh last_ok_at on the shared struct.
	var report sourceReport
	var updated sourcedomain.Source
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		run := &sourceRun{}
		if err := s.ingestSource(ctx, tx, slog, fetcher, src, limits, alreadyProcessed, run); err != nil {
			return err
		}
		report = run.report

		now := s.clock.Now()
		updated = *src
		updated.LastOKAt = &now
		if report.rateLimitMsg != "" {
			msg := report.rateLimitMsg
			updated.LastError = &msg
		} else {
			updated.LastError = nil
		}
		updated.UpdatedAt = now
		return s.sources.Save(ctx, tx, &updated)
	})
	if txErr != nil {
		s.metrics.SourceErrors.Inc()
		s.recordError(ctx, slog, src, txErr)
		return sourceReport{hitRunCap: report.hitRunCap}, false
	}
	*src = updated

	s.metrics.SourcesOK.Inc()
	slog.Info("source ingested",
		zap.Int("processed", report.processed),
		zap.Int("created", report.created),
	)
	return report, true
}

// ingestSource fetches the source's feed and upserts every posting. A
// provider call denial before anything was ingested fails the source;
// a denial after some postings landed ends it early but keeps the work.
func (s *Service) ingestSource(
	ctx context.Context,
	tx *gorm.DB,
	log *zap.Logger,
	fetcher atsdomain.Fetcher,
	src *sourcedomain.Source,
	limits config.IngestConfig,
	alreadyProcessed int,
	run *sourceRun,
) error {
	provider := fetcher.Provider()
	now := s.clock.Now()

	if !fetcher.Paginated() {
		ok, err := s.ledger.TryConsumeProviderCall(ctx, tx, provider, limits.MaxCallsPerDay)
		if err != nil {
			return err
		}
		if !ok {
			s.metrics.QuotaDenied.WithLabelValues("provider_call").Inc()
			return fmt.Errorf("rate limit reached (%s)", provider)
		}
		s.metrics.ProviderCalls.WithLabelValues(provider).Inc()

		postings, err := fetcher.FetchPage(ctx, src.APIBase, atsdomain.Page{Number: 1})
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		_, err = s.ingestPostings(ctx, tx, log, fetcher, src, postings, limits, alreadyProcessed, now, run)
		return err
	}

	for pageNum := 1; pageNum <= limits.GreenhouseMaxPages; pageNum++ {
		ok, err := s.ledger.TryConsumeProviderCall(ctx, tx, provider, limits.MaxCallsPerDay)
		if err != nil {
			return err
		}
		if !ok {
			s.metrics.QuotaDenied.WithLabelValues("provider_call").Inc()
			if run.report.processed == 0 {
				return fmt.Errorf("rate limit reached (%s)", provider)
			}
			run.report.rateLimitMsg = fmt.Sprintf("rate limit reached during pagination (%s)", provider)
			return nil
		}
		s.metrics.ProviderCalls.WithLabelValues(provider).Inc()

		postings, err := fetcher.FetchPage(ctx, src.APIBase, atsdomain.Page{
			Number: pageNum,
			Size:   limits.GreenhousePerPage,
		})
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		if len(postings) == 0 {
			return nil
		}

		stop, err := s.ingestPostings(ctx, tx, log, fetcher, src, postings, limits, alreadyProcessed, now, run)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// ingestPostings upserts one batch. It reports stop=true when the per-run
// cap or the per-source limit ends the source early.
func (s *Service) ingestPostings(
	ctx context.Context,
	tx *gorm.DB,
	log *zap.Logger,
	fetcher atsdomain.Fetcher,
	src *sourcedomain.Source,
	postings []atsdomain.Posting,
	limits config.IngestConfig,
	alreadyProcessed int,
	now time.Time,
	run *sourceRun,
) (bool, error) {
	detailFetcher, hasDetail := fetcher.(atsdomain.DetailFetcher)

	for i := range postings {
		if limits.PerSourceLimit > 0 && run.report.processed >= limits.PerSourceLimit {
			return true, nil
		}

		p := postings[i]
		if strings.TrimSpace(p.ATSJobID) == "" {
			continue
		}
		if hasDetail && p.RawText == "" && !run.stopDetail {
			s.fetchDetail(ctx, tx, log, detailFetcher, fetcher.Provider(), src, &p, limits, run)
		}

		outcome, err := s.upsertPosting(ctx, tx, src, p, now, limits.MaxNewJobsPerDay)
		if err != nil {
			return false, err
		}
		if outcome == ingestdomain.OutcomeCreated {
			run.report.created++
		}
		// Every record with an id counts toward the caps, denied
		// creations included.
		run.report.processed++

		if alreadyProcessed+run.report.processed >= limits.MaxFetchPerRun {
			run.report.hitRunCap = true
			return true, nil
		}
	}
	return false, nil
}

// fetchDetail enriches a posting with its full description. Each detail
// request spends one provider call; once the budget denies one, detail
// fetching stops for the rest of the source. Failures are ignored since
// the listing alone is still worth keeping.
func (s *Service) fetchDetail(
	ctx context.Context,
	tx *gorm.DB,
	log *zap.Logger,
	detailFetcher atsdomain.DetailFetcher,
	provider string,
	src *sourcedomain.Source,
	p *atsdomain.Posting,
	limits config.IngestConfig,
	run *sourceRun,
) {
	ok, err := s.ledger.TryConsumeProviderCall(ctx, tx, provider, limits.MaxCallsPerDay)
	if err != nil || !ok {
		if !ok {
			s.metrics.QuotaDenied.WithLabelValues("provider_call").Inc()
		}
		run.stopDetail = true
		return
	}
	s.metrics.ProviderCalls.WithLabelValues(provider).Inc()

	detail, err := detailFetcher.FetchDetail(ctx, src.APIBase, p.ATSJobID)
	if err != nil {
		log.Debug("detail fetch failed",
			zap.String("ats_job_id", p.ATSJobID),
			zap.Error(err),
		)
		return
	}
	p.RawText = detail.RawText
	if p.SalaryText == "" {
		p.SalaryText = detail.SalaryText
	}
}

// recordError persists the failure on the source outside the rolled-back
// transaction. The source stays active so the next run retries it.
func (s *Service) recordError(ctx context.Context, log *zap.Logger, src *sourcedomain.Source, cause error) {
	msg := cause.Error()
	src.LastError = &msg
	src.UpdatedAt = s.clock.Now()
	if err := s.sources.Save(ctx, s.db, src); err != nil {
		log.Error("failed to record source error", zap.Error(err))
		return
	}
	log.Warn("source ingestion failed", zap.String("last_error", msg))
}
