package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/openhire/jobfeed/internal/ats"
	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
	"github.com/openhire/jobfeed/internal/clock"
	"github.com/openhire/jobfeed/internal/config"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Registry *ats.Registry
	Clock    clock.Clock
	Config   config.Config
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	registry    *ats.Registry
	clock       clock.Clock
	repo        sourcedomain.Repository
	verifyDelay time.Duration
}

func NewService(p ServiceParam, repo sourcedomain.Repository) sourcedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("source.service"),
		genID:       p.GenID,
		registry:    p.Registry,
		clock:       p.Clock,
		repo:        repo,
		verifyDelay: p.Config.Ingest.VerifyDelay,
	}
}

// Upsert registers a discovered feed idempotently, keyed on
// (ats_type, company_slug, api_base) without relying on a DB constraint.
func (s *Service) Upsert(ctx context.Context, req sourcedomain.UpsertRequest) (*sourcedomain.Source, error) {
	atsType := strings.ToLower(strings.TrimSpace(req.ATSType))
	if !s.registry.ProviderExists(atsType) {
		return nil, sourcedomain.ErrInvalidATSType
	}

	apiBase := strings.TrimSpace(req.APIBase)
	if apiBase == "" {
		return nil, sourcedomain.ErrInvalidAPIBase
	}

	companySlug := strings.TrimSpace(req.CompanySlug)
	if companySlug == "" {
		companySlug = slug.Make(req.CompanyName)
	}
	if companySlug == "" {
		return nil, sourcedomain.ErrInvalidSlug
	}

	existing, err := s.repo.FindByTarget(ctx, s.db, atsType, companySlug, apiBase)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	if existing != nil {
		if req.CompanyName != "" {
			existing.CompanyName = req.CompanyName
		}
		if req.DiscoveredVia != "" {
			existing.DiscoveredVia = req.DiscoveredVia
		}
		existing.IsActive = req.Activate
		existing.UpdatedAt = now
		if err := s.repo.Save(ctx, s.db, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	src := &sourcedomain.Source{
		ID:            s.genID.Generate(),
		ATSType:       atsType,
		CompanySlug:   companySlug,
		CompanyName:   req.CompanyName,
		APIBase:       apiBase,
		DiscoveredVia: req.DiscoveredVia,
		IsActive:      req.Activate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, src); err != nil {
		return nil, err
	}
	s.log.Info("source registered",
		zap.String("ats_type", atsType),
		zap.String("company_slug", companySlug),
	)
	return src, nil
}

func (s *Service) List(ctx context.Context) ([]sourcedomain.Source, error) {
	return s.repo.List(ctx, s.db)
}

// VerifyInactive probes each inactive source with a single minimal fetch
// and promotes the ones that answer. Failures demote the source and keep
// the reason on last_error.
func (s *Service) VerifyInactive(ctx context.Context) (sourcedomain.VerifyResult, error) {
	sources, err := s.repo.ListInactive(ctx, s.db)
	if err != nil {
		return sourcedomain.VerifyResult{}, err
	}

	var result sourcedomain.VerifyResult
	for i := range sources {
		src := &sources[i]

		if s.verifyDelay > 0 && result.Verified+result.Failed > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.verifyDelay):
			}
		}

		if err := s.probe(ctx, src); err != nil {
			result.Failed++
			msg := "verify_failed:" + err.Error()
			src.LastError = &msg
			src.IsActive = false
			src.UpdatedAt = s.clock.Now()
			if saveErr := s.repo.Save(ctx, s.db, src); saveErr != nil {
				return result, saveErr
			}
			s.log.Info("source verification failed",
				zap.Int64("source_id", int64(src.ID)),
				zap.String("ats_type", src.ATSType),
				zap.Error(err),
			)
			continue
		}

		result.Verified++
		now := s.clock.Now()
		src.IsActive = true
		src.VerifiedAt = &now
		src.LastOKAt = &now
		src.LastError = nil
		src.UpdatedAt = now
		if err := s.repo.Save(ctx, s.db, src); err != nil {
			return result, err
		}
		s.log.Info("source verified and promoted",
			zap.Int64("source_id", int64(src.ID)),
			zap.String("ats_type", src.ATSType),
		)
	}
	return result, nil
}

func (s *Service) probe(ctx context.Context, src *sourcedomain.Source) error {
	fetcher, err := s.registry.Fetcher(src.ATSType)
	if err != nil {
		return err
	}
	_, err = fetcher.FetchPage(ctx, src.APIBase, atsdomain.Page{Number: 1, Size: 1})
	return err
}
