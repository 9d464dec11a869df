// Package domain contains the canonical persisted posting record.
package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Job is the canonical stored posting, keyed by a deterministic hash so
// upserts never need a natural-key round trip.
type Job struct {
	JobUID   string       `gorm:"primaryKey;size:40;column:job_uid" json:"job_uid"`
	SourceID snowflake.ID `gorm:"not null" json:"source_id"`
	ATSJobID string       `gorm:"size:128;not null;column:ats_job_id" json:"ats_job_id"`

	Title   string `gorm:"size:512;not null" json:"title"`
	Company string `gorm:"size:255;not null" json:"company"`
	URL     string `gorm:"size:1024;not null" json:"url"`

	LocationRaw  string `gorm:"size:512" json:"location_raw"`
	WorkplaceRaw string `gorm:"size:128" json:"workplace_raw"`

	PostedAt    *time.Time `json:"posted_at"`
	FirstSeen   time.Time  `gorm:"not null" json:"first_seen"`
	LastSeen    time.Time  `gorm:"not null" json:"last_seen"`
	LastChecked time.Time  `gorm:"not null" json:"last_checked"`

	RawJSON    datatypes.JSON `gorm:"column:raw_json" json:"raw_json,omitempty"`
	RawText    string         `gorm:"type:text" json:"raw_text,omitempty"`
	SalaryText string         `gorm:"size:255" json:"salary_text"`
}

func (Job) TableName() string { return "jobs" }

// UID derives the stable job identity from the source target and the
// provider-native id. Stable across runs; never recomputed differently.
func UID(atsType, companySlug, atsJobID string) string {
	sum := sha1.Sum([]byte(atsType + ":" + companySlug + ":" + atsJobID))
	return hex.EncodeToString(sum[:])
}
