package domain

import (
	"context"

	"gorm.io/gorm"
)

// ListFilter narrows a job listing. Zero values mean "no filter".
type ListFilter struct {
	Company   string
	Workplace string
	Query     string
	Page      int
	Size      int
}

type Repository interface {
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Job, int64, error)
	FindByUID(ctx context.Context, db *gorm.DB, uid string) (*Job, error)
}
