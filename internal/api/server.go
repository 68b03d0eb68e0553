package api

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/maxaizer/jobscout/internal/services"
	log "github.com/sirupsen/logrus"
	"net/http"
	"time"
)

const gracefulShutdownTimeout = 5 * time.Second

type ingestion interface {
	RunCycle(ctx context.Context) services.CycleResult
	Stats(ctx context.Context) (*services.IngestionStats, error)
}

type matching interface {
	Run(ctx context.Context, userID string, prefs models.Preferences, profile models.Profile) (services.MatchingResult, error)
}

type postingReader interface {
	List(ctx context.Context, filter repositories.PostingFilter) ([]models.JobPosting, error)
	Get(ctx context.Context, postingID string) (*models.JobPosting, error)
	GetMany(ctx context.Context, postingIDs []string) (map[string]models.JobPosting, error)
	Count(ctx context.Context) (int64, error)
}

type matchStore interface {
	ListByUser(ctx context.Context, userID string, status models.MatchStatus, limit int) ([]models.MatchResult, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.MatchResult, error)
	CountByStatus(ctx context.Context, userID string) (map[models.MatchStatus]int64, error)
	Get(ctx context.Context, userID, matchID string) (*models.MatchResult, error)
	UpdateStatus(ctx context.Context, userID, matchID string, status models.MatchStatus) (*models.MatchResult, error)
}

type candidateStore interface {
	services.CandidateRepository
	SavePreferences(ctx context.Context, prefs models.Preferences) error
	SaveProfile(ctx context.Context, profile models.Profile) error
}

type Dependencies struct {
	Ingestion  ingestion
	Matching   matching
	Postings   postingReader
	Matches    matchStore
	Candidates candidateStore
}

type Server struct {
	httpServer *http.Server
}

func NewServer(address string, deps Dependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              address,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func NewRouter(deps Dependencies) http.Handler {
	h := &handlers{deps: deps}

	router := chi.NewRouter()
	router.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		requestLogger,
		chiMiddleware.Recoverer,
	)

	router.Handle("/metrics", metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", h.health)

		r.Post("/ingestion/run", h.runIngestion)
		r.Get("/ingestion/stats", h.ingestionStats)

		r.Get("/jobs", h.listJobs)
		r.Get("/jobs/{postingID}", h.getJob)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/matching/run", h.runMatching)
			r.Get("/matches", h.listMatches)
			r.Get("/matches/{matchID}", h.getMatch)
			r.Get("/dashboard", h.dashboard)
			r.Post("/matches/{matchID}/action", h.matchAction)
			r.Get("/preferences", h.getPreferences)
			r.Put("/preferences", h.putPreferences)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.putProfile)
		})
	})

	return router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		s.httpServer.SetKeepAlivesEnabled(false)
		_ = s.httpServer.Shutdown(ctxTimeout)
		log.Info("api server terminated")
	}()

	log.Infof("api server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": chiMiddleware.GetReqID(r.Context()),
		}).Debug("request served")
	})
}
