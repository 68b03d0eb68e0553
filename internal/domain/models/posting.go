package models

import (
	"gorm.io/datatypes"
	"time"
)

// JobPosting is one listing normalized from an external source.
// (SourceName, SourceJobID) is the dedup key, PostingID is derived from it.
type JobPosting struct {
	ID             uint                        `gorm:"primaryKey" json:"-"`
	PostingID      string                      `gorm:"size:192;uniqueIndex;not null" json:"posting_id" validate:"required"`
	SourceName     string                      `gorm:"size:32;not null;uniqueIndex:idx_posting_source_key" json:"source_name" validate:"required"`
	SourceJobID    string                      `gorm:"size:160;not null;uniqueIndex:idx_posting_source_key" json:"source_job_id" validate:"required"`
	SourceURL      string                      `json:"source_url"`
	Title          string                      `gorm:"index" json:"title"`
	CompanyName    string                      `json:"company_name"`
	LocationText   string                      `json:"location_text"`
	IsRemote       bool                        `gorm:"index" json:"is_remote"`
	EmploymentType string                      `json:"employment_type"`
	Description    string                      `gorm:"type:text" json:"description"`
	Category       string                      `json:"category"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	SalaryMin      int                         `json:"salary_min"`
	SalaryMax      int                         `json:"salary_max"`
	PostedAt       time.Time                   `json:"posted_at"`
	IndexedAt      time.Time                   `gorm:"index" json:"indexed_at"`
}

func NewPostingID(sourceName, sourceJobID string) string {
	return sourceName + "_" + sourceJobID
}

func (p JobPosting) HasSalary() bool {
	return p.SalaryMin > 0 || p.SalaryMax > 0
}

// IngestionRun is an append-only audit record of one adapter invocation.
type IngestionRun struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	RunID         string    `gorm:"size:32;uniqueIndex;not null" json:"run_id"`
	Source        string    `gorm:"size:32;index" json:"source"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `gorm:"index" json:"completed_at"`
	FetchedCount  int       `json:"fetched_count"`
	InsertedCount int       `json:"inserted_count"`
}
