package models

import (
	"gorm.io/datatypes"
	"time"
)

type Preferences struct {
	UserID               string                      `gorm:"primaryKey;size:64" json:"user_id"`
	DesiredTitles        datatypes.JSONSlice[string] `json:"desired_titles"`
	PreferredLocations   datatypes.JSONSlice[string] `json:"preferred_locations"`
	RemoteOnly           bool                        `json:"remote_only"`
	MinSalary            int                         `json:"min_salary"`
	MaxSalary            int                         `json:"max_salary"`
	EmploymentTypes      datatypes.JSONSlice[string] `json:"employment_types"`
	NotificationsEnabled bool                        `json:"notifications_enabled"`
	TelegramChatID       int64                       `json:"telegram_chat_id"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

type Profile struct {
	UserID          string    `gorm:"primaryKey;size:64" json:"user_id"`
	FullName        string    `json:"full_name"`
	YearsExperience int       `json:"years_experience"`
	Summary         string    `gorm:"type:text" json:"summary"`
	ResumeText      string    `gorm:"type:text" json:"resume_text"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p Profile) HasResume() bool {
	return p.ResumeText != ""
}
