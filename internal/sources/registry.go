package sources

import (
	"context"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"slices"
	"time"
)

const (
	SourceRemotive       = "remotive"
	SourceWeWorkRemotely = "weworkremotely"
	SourceHackerNews     = "hackernews"
	SourceJobicy         = "jobicy"
	SourceRemoteCo       = "remoteco"
	SourceArbeitnow      = "arbeitnow"
)

// Order in which sources run within a cycle.
var KnownSources = []string{
	SourceRemotive, SourceWeWorkRemotely, SourceHackerNews, SourceJobicy, SourceRemoteCo, SourceArbeitnow,
}

type Source interface {
	Name() string
	// Fetch never fails: upstream problems are logged and yield an empty result.
	Fetch(ctx context.Context) []models.JobPosting
}

type Settings struct {
	DescriptionLimit  int
	SmallFetchTimeout time.Duration
	RemotiveLimit     int
	HNMaxComments     int
	SearchKeywords    []string
}

// Build creates adapters for the enabled source names in their fixed order.
// An empty list enables every known source.
func Build(client *Client, settings Settings, enabled []string) ([]Source, error) {
	for _, name := range enabled {
		if !slices.Contains(KnownSources, name) {
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}

	var result []Source
	for _, name := range KnownSources {
		if len(enabled) > 0 && !slices.Contains(enabled, name) {
			continue
		}
		switch name {
		case SourceRemotive:
			result = append(result, NewRemotive(client, settings.RemotiveLimit, settings.DescriptionLimit))
		case SourceWeWorkRemotely:
			result = append(result, NewWeWorkRemotely(client, settings.DescriptionLimit))
		case SourceHackerNews:
			result = append(result, NewHackerNews(client, settings.HNMaxComments, settings.SmallFetchTimeout, settings.DescriptionLimit))
		case SourceJobicy:
			result = append(result, NewJobicy(client, settings.SearchKeywords, settings.SmallFetchTimeout, settings.DescriptionLimit))
		case SourceRemoteCo:
			result = append(result, NewRemoteCo(client, settings.DescriptionLimit))
		case SourceArbeitnow:
			result = append(result, NewArbeitnow(client, settings.DescriptionLimit))
		}
	}
	return result, nil
}

type Result struct {
	Source      string
	Postings    []models.JobPosting
	StartedAt   time.Time
	CompletedAt time.Time
}

// Registry runs its sources one after another, each behind its own timeout and panic boundary.
type Registry struct {
	sources  []Source
	timeout  time.Duration
	validate *validator.Validate
}

func NewRegistry(timeout time.Duration, sources ...Source) *Registry {
	return &Registry{sources: sources, timeout: timeout, validate: validator.New()}
}

func (r *Registry) Names() []string {
	return lo.Map(r.sources, func(s Source, _ int) string { return s.Name() })
}

func (r *Registry) Each(ctx context.Context, handle func(Result)) {
	for _, source := range r.sources {
		started := time.Now().UTC()
		postings := r.fetch(ctx, source)
		completed := time.Now().UTC()

		metrics.SourceFetchDuration.WithLabelValues(source.Name()).Observe(completed.Sub(started).Seconds())
		metrics.PostingsFetchedCounter.WithLabelValues(source.Name()).Add(float64(len(postings)))

		handle(Result{Source: source.Name(), Postings: postings, StartedAt: started, CompletedAt: completed})
	}
}

func (r *Registry) fetch(ctx context.Context, source Source) (postings []models.JobPosting) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceApi).
				Errorf("source %s panicked: %v", source.Name(), rec)
			postings = []models.JobPosting{}
		}
	}()

	return r.finalize(source.Name(), source.Fetch(ctx))
}

// finalize fills derived fields and drops postings without an identity.
func (r *Registry) finalize(sourceName string, postings []models.JobPosting) []models.JobPosting {
	result := make([]models.JobPosting, 0, len(postings))
	for _, posting := range postings {
		if posting.SourceName == "" {
			posting.SourceName = sourceName
		}
		if posting.SourceJobID != "" {
			posting.PostingID = models.NewPostingID(posting.SourceName, posting.SourceJobID)
		}
		if posting.Tags == nil {
			posting.Tags = datatypes.JSONSlice[string]{}
		}

		if err := r.validate.Struct(posting); err != nil {
			log.Warnf("dropping invalid posting from %s: %v", sourceName, err)
			continue
		}
		result = append(result, posting)
	}
	return result
}

func bestEffort(name string, fetch func() ([]models.JobPosting, error)) []models.JobPosting {
	postings, err := fetch()
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceApi).
			Errorf("failed to fetch postings from %s: %v", name, err)
		return []models.JobPosting{}
	}
	log.Debugf("fetched %d postings from %s", len(postings), name)
	return postings
}
