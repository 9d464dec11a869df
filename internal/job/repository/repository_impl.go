package repository

import (
	"context"

	jobdomain "github.com/openhire/jobfeed/internal/job/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() jobdomain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter jobdomain.ListFilter) ([]jobdomain.Job, int64, error) {
	q := db.WithContext(ctx).Model(&jobdomain.Job{})

	if filter.Company != "" {
		q = q.Where("company = ?", filter.Company)
	}
	if filter.Workplace != "" {
		q = q.Where("workplace_raw = ?", filter.Workplace)
	}
	if filter.Query != "" {
		q = q.Where("title LIKE ?", "%"+filter.Query+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size < 1 || size > 200 {
		size = 50
	}

	var jobs []jobdomain.Job
	err := q.Order("last_seen DESC, job_uid ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *repo) FindByUID(ctx context.Context, db *gorm.DB, uid string) (*jobdomain.Job, error) {
	var job jobdomain.Job
	err := db.WithContext(ctx).Limit(1).Find(&job, "job_uid = ?", uid).Error
	if err != nil {
		return nil, err
	}
	if job.JobUID == "" {
		return nil, nil
	}
	return &job, nil
}
