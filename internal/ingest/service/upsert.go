package service

import (
	"context"
	"strings"
	"time"

	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
	"github.com/openhire/jobfeed/internal/ats/normalize"
	ingestdomain "github.com/openhire/jobfeed/internal/ingest/domain"
	jobdomain "github.com/openhire/jobfeed/internal/job/domain"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
	"github.com/openhire/jobfeed/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// upsertPosting ensures exactly one job row reflects the posting's current
// state. Creation is gated by the daily new-record budget; updates never
// are. Replaying an identical posting only refreshes last_seen and
// last_checked.
func (s *Service) upsertPosting(
	ctx context.Context,
	tx *gorm.DB,
	src *sourcedomain.Source,
	p atsdomain.Posting,
	now time.Time,
	maxNewPerDay int,
) (ingestdomain.UpsertOutcome, error) {
	atsJobID := strings.TrimSpace(p.ATSJobID)
	if atsJobID == "" {
		return ingestdomain.OutcomeSkipped, nil
	}

	uid := jobdomain.UID(src.ATSType, src.CompanySlug, atsJobID)

	var existing jobdomain.Job
	if err := tx.WithContext(ctx).Limit(1).Find(&existing, "job_uid = ?", uid).Error; err != nil {
		return ingestdomain.OutcomeSkipped, err
	}

	if existing.JobUID != "" {
		applyPosting(&existing, src, p, now)
		if err := tx.WithContext(ctx).Save(&existing).Error; err != nil {
			return ingestdomain.OutcomeSkipped, err
		}
		return ingestdomain.OutcomeUpdated, nil
	}

	ok, err := s.ledger.TryConsumeNewJobSlot(ctx, tx, maxNewPerDay)
	if err != nil {
		return ingestdomain.OutcomeSkipped, err
	}
	if !ok {
		s.metrics.QuotaDenied.WithLabelValues("new_job").Inc()
		return ingestdomain.OutcomeSkipped, nil
	}

	job := jobdomain.Job{
		JobUID:      uid,
		SourceID:    src.ID,
		ATSJobID:    atsJobID,
		FirstSeen:   now,
		LastSeen:    now,
		LastChecked: now,
	}
	applyPosting(&job, src, p, now)

	if err := tx.WithContext(ctx).Create(&job).Error; err != nil {
		// Another run created the row between lookup and insert. The
		// consumed slot is not refunded; treat the posting as an update.
		if db.IsDuplicateKeyErr(err) {
			if ferr := tx.WithContext(ctx).Limit(1).Find(&existing, "job_uid = ?", uid).Error; ferr != nil {
				return ingestdomain.OutcomeSkipped, ferr
			}
			applyPosting(&existing, src, p, now)
			if serr := tx.WithContext(ctx).Save(&existing).Error; serr != nil {
				return ingestdomain.OutcomeSkipped, serr
			}
			return ingestdomain.OutcomeUpdated, nil
		}
		return ingestdomain.OutcomeSkipped, err
	}
	return ingestdomain.OutcomeCreated, nil
}

// applyPosting writes the mutable fields. first_seen is never touched here
// beyond the zero value set at construction.
func applyPosting(job *jobdomain.Job, src *sourcedomain.Source, p atsdomain.Posting, now time.Time) {
	title := normalize.Truncate(p.Title, normalize.MaxTitle)
	if title == "" {
		title = "Untitled"
	}

	job.Title = title
	job.Company = normalize.Truncate(src.Company(), normalize.MaxCompany)
	job.URL = normalize.Truncate(p.URL, normalize.MaxURL)
	job.LocationRaw = normalize.Truncate(p.LocationRaw, normalize.MaxLocation)
	job.WorkplaceRaw = normalize.Truncate(p.WorkplaceRaw, normalize.MaxWorkplace)
	job.PostedAt = p.PostedAt
	job.RawJSON = datatypes.JSON(p.RawJSON)
	job.RawText = p.RawText
	job.SalaryText = normalize.Truncate(p.SalaryText, normalize.MaxSalary)
	job.LastSeen = now
	job.LastChecked = now
}
