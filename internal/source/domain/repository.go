package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the persistence boundary for sources. The database handle
// is passed per call so operations can join a caller's transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, src *Source) error
	Save(ctx context.Context, db *gorm.DB, src *Source) error
	ListActive(ctx context.Context, db *gorm.DB) ([]Source, error)
	ListInactive(ctx context.Context, db *gorm.DB) ([]Source, error)
	List(ctx context.Context, db *gorm.DB) ([]Source, error)
	FindByTarget(ctx context.Context, db *gorm.DB, atsType, companySlug, apiBase string) (*Source, error)
}
