package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/maxaizer/jobscout/internal/services"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strconv"
)

const (
	defaultPageSize     = 50
	maxPageSize         = 200
	dashboardRecentSize = 5
)

var errSalaryRange = errors.New("max_salary must not be less than min_salary")

type handlers struct {
	deps Dependencies
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthReply{Status: "ok"})
}

func (h *handlers) runIngestion(w http.ResponseWriter, r *http.Request) {
	// a disconnecting client must not cut the cycle short
	result := h.deps.Ingestion.RunCycle(context.WithoutCancel(r.Context()))
	_ = render.Render(w, r, CycleReply{result})
}

func (h *handlers) ingestionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.Ingestion.Stats(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, StatsReply{stats})
}

func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	filter := repositories.PostingFilter{
		Source:     r.URL.Query().Get("source"),
		RemoteOnly: r.URL.Query().Get("remote") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	if title := r.URL.Query().Get("title"); title != "" {
		filter.TitleKeywords = []string{title}
	}

	jobs, err := h.deps.Postings.List(r.Context(), filter)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, JobsReply{Jobs: jobs, Limit: limit, Offset: offset})
}

func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	posting, err := h.deps.Postings.Get(r.Context(), chi.URLParam(r, "postingID"))
	if errors.Is(err, repositories.ErrNotFound) {
		_ = render.Render(w, r, errNotFound)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, JobReply{posting})
}

func (h *handlers) runMatching(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	prefs, profile, err := services.LoadCandidate(r.Context(), h.deps.Candidates, userID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	result, err := h.deps.Matching.Run(r.Context(), userID, prefs, profile)
	if errors.Is(err, services.ErrPreconditionFailed) {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, MatchingReply{result})
}

func (h *handlers) listMatches(w http.ResponseWriter, r *http.Request) {
	status := models.MatchStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.MatchPending, models.MatchApproved, models.MatchRejected, models.MatchApplied:
	default:
		_ = render.Render(w, r, errBadRequest(fmt.Errorf("unknown status %q", status)))
		return
	}

	limit, _, err := pagination(r)
	if err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	matches, err := h.deps.Matches.ListByUser(r.Context(), userFrom(r), status, limit)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	views, err := h.joinPostings(r.Context(), matches)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, MatchesReply{Matches: views})
}

func (h *handlers) getMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.deps.Matches.Get(r.Context(), userFrom(r), chi.URLParam(r, "matchID"))
	if errors.Is(err, repositories.ErrNotFound) {
		_ = render.Render(w, r, errNotFound)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	views, err := h.joinPostings(r.Context(), []models.MatchResult{*match})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, views[0])
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	counts, err := h.deps.Matches.CountByStatus(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	jobs, err := h.deps.Postings.Count(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	recent, err := h.deps.Matches.Recent(r.Context(), userID, dashboardRecentSize)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	views, err := h.joinPostings(r.Context(), recent)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	reply := DashboardReply{
		PendingMatches:   counts[models.MatchPending],
		ApprovedMatches:  counts[models.MatchApproved] + counts[models.MatchApplied],
		RejectedMatches:  counts[models.MatchRejected],
		ApplicationsSent: counts[models.MatchApplied],
		TotalJobsIndexed: jobs,
		RecentMatches:    views,
	}
	for _, count := range counts {
		reply.TotalMatches += count
	}
	_ = render.Render(w, r, reply)
}

// joinPostings attaches postings to matches with one batch query.
func (h *handlers) joinPostings(ctx context.Context, matches []models.MatchResult) ([]MatchView, error) {
	postingIDs := lo.Map(matches, func(m models.MatchResult, _ int) string { return m.JobPostingID })
	postings, err := h.deps.Postings.GetMany(ctx, postingIDs)
	if err != nil {
		return nil, err
	}

	return lo.Map(matches, func(m models.MatchResult, _ int) MatchView {
		view := MatchView{MatchResult: m}
		if posting, ok := postings[m.JobPostingID]; ok {
			view.Posting = &posting
		}
		return view
	}), nil
}

func (h *handlers) matchAction(w http.ResponseWriter, r *http.Request) {
	var req MatchActionRequest
	if err := render.Bind(r, &req); err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	status, _ := models.StatusForAction(req.Action)
	match, err := h.deps.Matches.UpdateStatus(r.Context(), userFrom(r), chi.URLParam(r, "matchID"), status)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		_ = render.Render(w, r, errNotFound)
	case errors.Is(err, models.ErrTransitionNotAllowed):
		_ = render.Render(w, r, errConflict(err))
	case err != nil:
		h.internalError(w, r, err)
	default:
		_ = render.Render(w, r, MatchReply{match})
	}
}

func (h *handlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, _, err := services.LoadCandidate(r.Context(), h.deps.Candidates, userFrom(r))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, PreferencesReply{prefs})
}

func (h *handlers) putPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := render.Bind(r, &req); err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	prefs := models.Preferences{
		UserID:               userFrom(r),
		DesiredTitles:        req.DesiredTitles,
		PreferredLocations:   req.PreferredLocations,
		RemoteOnly:           req.RemoteOnly,
		MinSalary:            req.MinSalary,
		MaxSalary:            req.MaxSalary,
		EmploymentTypes:      req.EmploymentTypes,
		NotificationsEnabled: req.NotificationsEnabled,
		TelegramChatID:       req.TelegramChatID,
	}
	if err := h.deps.Candidates.SavePreferences(r.Context(), prefs); err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, PreferencesReply{prefs})
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	_, profile, err := services.LoadCandidate(r.Context(), h.deps.Candidates, userFrom(r))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, ProfileReply{profile})
}

func (h *handlers) putProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := render.Bind(r, &req); err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	profile := models.Profile{
		UserID:          userFrom(r),
		FullName:        req.FullName,
		YearsExperience: req.YearsExperience,
		Summary:         req.Summary,
		ResumeText:      req.ResumeText,
	}
	if err := h.deps.Candidates.SaveProfile(r.Context(), profile); err != nil {
		h.internalError(w, r, err)
		return
	}
	_ = render.Render(w, r, ProfileReply{profile})
}

func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	_ = render.Render(w, r, errInternal())
}

func pagination(r *http.Request) (limit int, offset int, err error) {
	limit, offset = defaultPageSize, 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		limit = min(limit, maxPageSize)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
