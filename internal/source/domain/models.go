// Package domain contains the configured job-board feeds.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Source is one configured (provider, company) feed to poll. Discovery
// creates sources inactive; verification promotes them; the ingestion run
// mutates only the health fields. Nothing deletes them.
type Source struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ATSType       string       `gorm:"size:32;not null;column:ats_type" json:"ats_type"`
	CompanySlug   string       `gorm:"size:128;not null" json:"company_slug"`
	CompanyName   string       `gorm:"size:255" json:"company_name"`
	APIBase       string       `gorm:"size:512;not null;column:api_base" json:"api_base"`
	DiscoveredVia string       `gorm:"size:64" json:"discovered_via"`

	IsActive   bool       `gorm:"not null;default:false" json:"is_active"`
	VerifiedAt *time.Time `json:"verified_at"`
	LastOKAt   *time.Time `gorm:"column:last_ok_at" json:"last_ok_at"`
	LastError  *string    `gorm:"type:text" json:"last_error"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Source) TableName() string { return "sources" }

// Company returns the display name used on persisted jobs, falling back
// to the slug.
func (s Source) Company() string {
	if name := s.CompanyName; name != "" {
		return name
	}
	return s.CompanySlug
}
