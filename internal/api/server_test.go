package api

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/maxaizer/jobscout/internal/scoring"
	"github.com/maxaizer/jobscout/internal/services"
	"github.com/maxaizer/jobscout/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubSource struct {
	postings []models.JobPosting
}

func (stubSource) Name() string { return sources.SourceRemotive }

func (s stubSource) Fetch(context.Context) []models.JobPosting { return s.postings }

type ingestionStub struct {
	ctxErr error
}

func (s *ingestionStub) RunCycle(ctx context.Context) services.CycleResult {
	s.ctxErr = ctx.Err()
	return services.CycleResult{Sources: []services.SourceResult{}}
}

func (s *ingestionStub) Stats(context.Context) (*services.IngestionStats, error) {
	return &services.IngestionStats{}, nil
}

type testEnv struct {
	handler  http.Handler
	postings *repositories.Postings
	matches  *repositories.Matches
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbContext, err := repositories.NewDbContext(config.DBConfig{Type: config.DBTypeSQLite, ConnectionString: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })

	postings := repositories.NewPostingsRepository(dbContext.DB)
	matches := repositories.NewMatchesRepository(dbContext.DB)
	runs := repositories.NewRunsRepository(dbContext.DB)

	registry := sources.NewRegistry(time.Second, stubSource{postings: []models.JobPosting{
		{SourceJobID: "1", Title: "Senior Go Engineer", IsRemote: true, LocationText: "Remote"},
		{SourceJobID: "2", Title: "Accountant", LocationText: "Paris"},
	}})

	deps := Dependencies{
		Ingestion: services.NewIngestionRunner(registry, postings, runs),
		Matching: services.NewMatchingRunner(EventBus.New(), postings, matches, scoring.NewEngine(nil, nil),
			config.MatchingConfig{CandidateLimit: 20, MaxScored: 5, NotifyThreshold: 80}),
		Postings:   postings,
		Matches:    matches,
		Candidates: repositories.NewCandidatesRepository(dbContext.DB),
	}
	return &testEnv{handler: NewRouter(deps), postings: postings, matches: matches}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func Test_Health(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func Test_IngestionRunAndStats(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/ingestion/run", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total_fetched"])
	assert.Equal(t, []any{map[string]any{"source": "remotive", "fetched": float64(2), "inserted": float64(2)}}, body["sources"])

	rec, body = env.do(t, http.MethodGet, "/api/ingestion/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total_jobs_indexed"])
	assert.Equal(t, map[string]any{"remotive": float64(2)}, body["by_source"])
	assert.Len(t, body["recent_runs"], 1)
}

func Test_IngestionRun_IgnoresClientDisconnect(t *testing.T) {
	stub := &ingestionStub{}
	handler := NewRouter(Dependencies{Ingestion: stub})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/ingestion/run", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, stub.ctxErr)
}

func Test_Jobs(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/ingestion/run", "", nil)

	rec, body := env.do(t, http.MethodGet, "/api/jobs?title=go&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["jobs"], 1)
	assert.Equal(t, "remotive_1", body["jobs"].([]any)[0].(map[string]any)["posting_id"])

	rec, body = env.do(t, http.MethodGet, "/api/jobs/remotive_2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Accountant", body["title"])

	rec, _ = env.do(t, http.MethodGet, "/api/jobs/remotive_404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/jobs?limit=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_UserRoutesRequireHeader(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/preferences", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_MatchingFlow(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/ingestion/run", "", nil)

	rec, body := env.do(t, http.MethodPost, "/api/matching/run", "user-1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "desired title")

	rec, _ = env.do(t, http.MethodPut, "/api/preferences", "user-1", map[string]any{
		"desired_titles":      []string{"Engineer", " "},
		"remote_only":         true,
		"preferred_locations": []string{"Remote"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/preferences", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Engineer"}, body["desired_titles"])

	rec, body = env.do(t, http.MethodPost, "/api/matching/run", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["matches_created"])

	rec, body = env.do(t, http.MethodPost, "/api/matching/run", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["matches_created"])

	rec, body = env.do(t, http.MethodGet, "/api/matches?status=pending", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	match := matches[0].(map[string]any)
	assert.Equal(t, float64(90), match["score"])
	assert.Equal(t, "Senior Go Engineer", match["posting"].(map[string]any)["title"])

	matchID := match["match_id"].(string)

	rec, _ = env.do(t, http.MethodPost, "/api/matches/"+matchID+"/action", "user-1", map[string]string{"action": "apply"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/matches/"+matchID+"/action", "user-1", map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", body["status"])

	rec, _ = env.do(t, http.MethodPost, "/api/matches/"+matchID+"/action", "user-2", map[string]string{"action": "reject"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/matches/"+matchID+"/action", "user-1", map[string]string{"action": "delete"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/matches?status=unknown", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func (e *testEnv) matchFor(t *testing.T, userID string) string {
	t.Helper()
	e.do(t, http.MethodPost, "/api/ingestion/run", "", nil)
	rec, _ := e.do(t, http.MethodPut, "/api/preferences", userID, map[string]any{"desired_titles": []string{"Engineer"}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = e.do(t, http.MethodPost, "/api/matching/run", userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := e.do(t, http.MethodGet, "/api/matches", userID, nil)
	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	return matches[0].(map[string]any)["match_id"].(string)
}

func Test_MatchDetail(t *testing.T) {
	env := newTestEnv(t)
	matchID := env.matchFor(t, "user-1")

	rec, body := env.do(t, http.MethodGet, "/api/matches/"+matchID, "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, matchID, body["match_id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "Senior Go Engineer", body["posting"].(map[string]any)["title"])

	rec, _ = env.do(t, http.MethodGet, "/api/matches/"+matchID, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/matches/match_missing", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Dashboard_EmptyForNewUser(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/ingestion/run", "", nil)

	rec, body := env.do(t, http.MethodGet, "/api/dashboard", "user-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total_matches"])
	assert.Equal(t, float64(2), body["total_jobs_indexed"])
	assert.Equal(t, []any{}, body["recent_matches"])
}

func Test_Dashboard_TracksApplicationFunnel(t *testing.T) {
	env := newTestEnv(t)
	matchID := env.matchFor(t, "user-1")

	_, body := env.do(t, http.MethodGet, "/api/dashboard", "user-1", nil)
	assert.Equal(t, float64(1), body["total_matches"])
	assert.Equal(t, float64(1), body["pending_matches"])
	assert.Equal(t, float64(0), body["applications_sent"])

	rec, _ := env.do(t, http.MethodPost, "/api/matches/"+matchID+"/action", "user-1", map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body = env.do(t, http.MethodPost, "/api/matches/"+matchID+"/action", "user-1", map[string]string{"action": "apply"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "applied", body["status"])

	rec, body = env.do(t, http.MethodGet, "/api/dashboard", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total_matches"])
	assert.Equal(t, float64(0), body["pending_matches"])
	assert.Equal(t, float64(1), body["approved_matches"])
	assert.Equal(t, float64(0), body["rejected_matches"])
	assert.Equal(t, float64(1), body["applications_sent"])
	assert.Equal(t, float64(2), body["total_jobs_indexed"])

	recent := body["recent_matches"].([]any)
	require.Len(t, recent, 1)
	assert.Equal(t, matchID, recent[0].(map[string]any)["match_id"])
	assert.Equal(t, "Senior Go Engineer", recent[0].(map[string]any)["posting"].(map[string]any)["title"])

	_, body = env.do(t, http.MethodGet, "/api/matches?status=applied", "user-1", nil)
	assert.Len(t, body["matches"], 1)

	_, body = env.do(t, http.MethodGet, "/api/dashboard", "user-2", nil)
	assert.Equal(t, float64(0), body["total_matches"])
}

func Test_PreferencesValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPut, "/api/preferences", "user-1", map[string]any{
		"desired_titles": []string{"Go"},
		"min_salary":     100000,
		"max_salary":     50000,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errSalaryRange.Error(), body["error"])
}

func Test_Profile(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/profile", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", body["user_id"])

	rec, _ = env.do(t, http.MethodPut, "/api/profile", "user-1", map[string]any{
		"full_name":        "Ada",
		"years_experience": 5,
		"resume_text":      "Go, Kubernetes",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/profile", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", body["full_name"])
	assert.Equal(t, float64(5), body["years_experience"])

	rec, _ = env.do(t, http.MethodPut, "/api/profile", "user-1", map[string]any{"years_experience": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_Metrics(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
