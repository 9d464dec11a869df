package repository

import (
	"context"

	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sourcedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, src *sourcedomain.Source) error {
	return db.WithContext(ctx).Create(src).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, src *sourcedomain.Source) error {
	return db.WithContext(ctx).Save(src).Error
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]sourcedomain.Source, error) {
	var sources []sourcedomain.Source
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *repo) ListInactive(ctx context.Context, db *gorm.DB) ([]sourcedomain.Source, error) {
	var sources []sourcedomain.Source
	err := db.WithContext(ctx).
		Where("is_active = ?", false).
		Order("id asc").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]sourcedomain.Source, error) {
	var sources []sourcedomain.Source
	err := db.WithContext(ctx).Order("id asc").Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *repo) FindByTarget(ctx context.Context, db *gorm.DB, atsType, companySlug, apiBase string) (*sourcedomain.Source, error) {
	var src sourcedomain.Source
	err := db.WithContext(ctx).
		Where("ats_type = ? AND company_slug = ? AND api_base = ?", atsType, companySlug, apiBase).
		Limit(1).
		Find(&src).Error
	if err != nil {
		return nil, err
	}
	if src.ID == 0 {
		return nil, nil
	}
	return &src, nil
}
