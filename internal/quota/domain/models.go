// Package domain contains the durable daily budget counters.
package domain

// ProviderDailyUsage counts API calls per provider per UTC day.
type ProviderDailyUsage struct {
	Day     string `gorm:"primaryKey;size:10"`
	ATSType string `gorm:"primaryKey;size:32;column:ats_type"`
	Calls   int    `gorm:"not null;default:0"`
}

func (ProviderDailyUsage) TableName() string { return "api_daily_usage" }

// NewJobDaily counts newly created job rows per UTC day, across all providers.
type NewJobDaily struct {
	Day     string `gorm:"primaryKey;size:10"`
	Created int    `gorm:"not null;default:0"`
}

func (NewJobDaily) TableName() string { return "job_daily_new" }
