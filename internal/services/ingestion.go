package services

import (
	"context"
	"github.com/google/uuid"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/maxaizer/jobscout/internal/sources"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const recentRunsLimit = 10

type sourceRegistry interface {
	Each(ctx context.Context, handle func(sources.Result))
}

type postingRepository interface {
	Upsert(ctx context.Context, posting models.JobPosting) error
	Count(ctx context.Context) (int64, error)
	CountBySource(ctx context.Context) (map[string]int64, error)
}

type runRepository interface {
	Add(ctx context.Context, run models.IngestionRun) error
	Recent(ctx context.Context, limit int) ([]models.IngestionRun, error)
}

type SourceResult struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
}

type CycleResult struct {
	Sources      []SourceResult `json:"sources"`
	TotalFetched int            `json:"total_fetched"`
}

type IngestionStats struct {
	RecentRuns       []models.IngestionRun `json:"recent_runs"`
	TotalJobsIndexed int64                 `json:"total_jobs_indexed"`
	BySource         map[string]int64      `json:"by_source"`
}

// IngestionRunner performs ingestion cycles. The scheduler and manual
// triggers share it, upserts make overlapping cycles harmless.
type IngestionRunner struct {
	registry sourceRegistry
	postings postingRepository
	runs     runRepository
}

func NewIngestionRunner(registry sourceRegistry, postings postingRepository, runs runRepository) *IngestionRunner {
	return &IngestionRunner{registry: registry, postings: postings, runs: runs}
}

func (r *IngestionRunner) RunCycle(ctx context.Context) CycleResult {
	start := time.Now()
	result := CycleResult{Sources: []SourceResult{}}

	r.registry.Each(ctx, func(fetched sources.Result) {
		inserted := r.store(ctx, fetched.Source, fetched.Postings)

		run := models.IngestionRun{
			RunID:         newRunID(),
			Source:        fetched.Source,
			StartedAt:     fetched.StartedAt,
			CompletedAt:   time.Now().UTC(),
			FetchedCount:  len(fetched.Postings),
			InsertedCount: inserted,
		}
		if err := r.runs.Add(ctx, run); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to record ingestion run for %s: %v", fetched.Source, err)
		}

		result.Sources = append(result.Sources, SourceResult{
			Source:   fetched.Source,
			Fetched:  run.FetchedCount,
			Inserted: inserted,
		})
		result.TotalFetched += run.FetchedCount
	})

	metrics.IngestionCycleDuration.Observe(time.Since(start).Seconds())
	log.Infof("ingestion cycle finished in %v, fetched %d postings", time.Since(start), result.TotalFetched)
	return result
}

// store upserts postings in the order the source returned them. A failed
// upsert only costs that posting.
func (r *IngestionRunner) store(ctx context.Context, source string, postings []models.JobPosting) int {
	inserted := 0
	for _, posting := range postings {
		if err := r.postings.Upsert(ctx, posting); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to upsert posting %s: %v", posting.PostingID, err)
			continue
		}
		inserted++
	}
	metrics.PostingsUpsertedCounter.WithLabelValues(source).Add(float64(inserted))
	return inserted
}

func (r *IngestionRunner) Stats(ctx context.Context) (*IngestionStats, error) {
	runs, err := r.runs.Recent(ctx, recentRunsLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recent runs")
	}

	total, err := r.postings.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count postings")
	}

	bySource, err := r.postings.CountBySource(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count postings by source")
	}

	return &IngestionStats{RecentRuns: runs, TotalJobsIndexed: total, BySource: bySource}, nil
}

func newRunID() string {
	return "run_" + shortUUID()
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
