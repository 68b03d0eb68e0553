package api

import (
	"github.com/go-playground/validator/v10"
	"net/http"
	"strings"
)

var validate = validator.New()

type PreferencesRequest struct {
	DesiredTitles        []string `json:"desired_titles" validate:"max=20,dive,max=100"`
	PreferredLocations   []string `json:"preferred_locations" validate:"max=20,dive,max=100"`
	RemoteOnly           bool     `json:"remote_only"`
	MinSalary            int      `json:"min_salary" validate:"gte=0"`
	MaxSalary            int      `json:"max_salary" validate:"gte=0"`
	EmploymentTypes      []string `json:"employment_types" validate:"max=10,dive,max=32"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
	TelegramChatID       int64    `json:"telegram_chat_id"`
}

func (p *PreferencesRequest) Bind(*http.Request) error {
	p.DesiredTitles = trimAll(p.DesiredTitles)
	p.PreferredLocations = trimAll(p.PreferredLocations)
	p.EmploymentTypes = trimAll(p.EmploymentTypes)
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.MaxSalary > 0 && p.MaxSalary < p.MinSalary {
		return errSalaryRange
	}
	return nil
}

type ProfileRequest struct {
	FullName        string `json:"full_name" validate:"max=200"`
	YearsExperience int    `json:"years_experience" validate:"gte=0,lte=70"`
	Summary         string `json:"summary" validate:"max=5000"`
	ResumeText      string `json:"resume_text" validate:"max=100000"`
}

func (p *ProfileRequest) Bind(*http.Request) error {
	return validate.Struct(p)
}

type MatchActionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject apply"`
}

func (m *MatchActionRequest) Bind(*http.Request) error {
	return validate.Struct(m)
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}
