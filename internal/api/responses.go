package api

import (
	"github.com/go-chi/render"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/services"
	"net/http"
)

type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	Message        string `json:"error"`
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errBadRequest(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusBadRequest, Message: err.Error()}
}

func errConflict(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusConflict, Message: err.Error()}
}

func errInternal() render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusInternalServerError, Message: "internal error"}
}

var (
	errNotFound     = &ErrResponse{HTTPStatusCode: http.StatusNotFound, Message: "not found"}
	errUnauthorized = &ErrResponse{HTTPStatusCode: http.StatusUnauthorized, Message: "missing " + userIDHeader + " header"}
)

type HealthReply struct {
	Status string `json:"status"`
}

func (HealthReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type CycleReply struct {
	services.CycleResult
}

func (CycleReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type StatsReply struct {
	*services.IngestionStats
}

func (StatsReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type MatchingReply struct {
	services.MatchingResult
}

func (MatchingReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type JobsReply struct {
	Jobs   []models.JobPosting `json:"jobs"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

func (JobsReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type JobReply struct {
	*models.JobPosting
}

func (JobReply) Render(http.ResponseWriter, *http.Request) error { return nil }

// MatchView is a match joined with its posting. Posting is nil when the posting was pruned.
type MatchView struct {
	models.MatchResult
	Posting *models.JobPosting `json:"posting"`
}

func (MatchView) Render(http.ResponseWriter, *http.Request) error { return nil }

type MatchesReply struct {
	Matches []MatchView `json:"matches"`
}

func (MatchesReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type MatchReply struct {
	*models.MatchResult
}

func (MatchReply) Render(http.ResponseWriter, *http.Request) error { return nil }

// DashboardReply is the per-user funnel. Approved includes matches that were applied to later.
type DashboardReply struct {
	TotalMatches     int64       `json:"total_matches"`
	PendingMatches   int64       `json:"pending_matches"`
	ApprovedMatches  int64       `json:"approved_matches"`
	RejectedMatches  int64       `json:"rejected_matches"`
	ApplicationsSent int64       `json:"applications_sent"`
	TotalJobsIndexed int64       `json:"total_jobs_indexed"`
	RecentMatches    []MatchView `json:"recent_matches"`
}

func (DashboardReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type PreferencesReply struct {
	models.Preferences
}

func (PreferencesReply) Render(http.ResponseWriter, *http.Request) error { return nil }

type ProfileReply struct {
	models.Profile
}

func (ProfileReply) Render(http.ResponseWriter, *http.Request) error { return nil }
