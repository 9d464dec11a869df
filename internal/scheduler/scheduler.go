// Package scheduler drives the periodic ingestion and verification jobs.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/openhire/jobfeed/internal/config"
	ingestdomain "github.com/openhire/jobfeed/internal/ingest/domain"
	"github.com/openhire/jobfeed/internal/runlock"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(register),
)

type Param struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	Locker  *runlock.Locker
	Ingest  ingestdomain.Service
	Sources sourcedomain.Service
}

type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	cfg     config.Config
	locker  *runlock.Locker
	ingest  ingestdomain.Service
	sources sourcedomain.Service
}

func New(p Param) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     p.Log.Named("scheduler"),
		cfg:     p.Config,
		locker:  p.Locker,
		ingest:  p.Ingest,
		sources: p.Sources,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.IngestCron, s.runIngest); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.VerifyCron, s.runVerify); err != nil {
		return err
	}
	s.cron.Start()

	// First ingestion right away instead of waiting a full interval.
	go s.runIngest()

	s.log.Info("scheduler started",
		zap.String("ingest_cron", s.cfg.IngestCron),
		zap.String("verify_cron", s.cfg.VerifyCron),
	)
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Scheduler) runIngest() {
	ctx := context.Background()

	lease, ok, err := s.locker.Acquire(ctx, "ingest")
	if err != nil {
		s.log.Error("ingest lock error", zap.Error(err))
		return
	}
	if !ok {
		s.log.Info("ingest run skipped, lock held by another replica")
		return
	}
	defer lease.Release(ctx)

	res, err := s.ingest.Run(ctx)
	if err != nil {
		s.log.Error("ingest run failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled ingest finished",
		zap.Int("sources_ok", res.SourcesOK),
		zap.Int("jobs_created", res.JobsCreated),
		zap.Int("jobs_processed", res.JobsProcessed),
	)
}

func (s *Scheduler) runVerify() {
	ctx := context.Background()

	lease, ok, err := s.locker.Acquire(ctx, "verify")
	if err != nil {
		s.log.Error("verify lock error", zap.Error(err))
		return
	}
	if !ok {
		s.log.Info("verify run skipped, lock held by another replica")
		return
	}
	defer lease.Release(ctx)

	res, err := s.sources.VerifyInactive(ctx)
	if err != nil {
		s.log.Error("verify run failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled verification finished",
		zap.Int("verified", res.Verified),
		zap.Int("failed", res.Failed),
	)
}

func register(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
