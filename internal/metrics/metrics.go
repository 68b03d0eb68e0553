package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	IngestionCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscout_ingestion_cycle_duration_seconds",
			Help:    "Duration of each ingestion cycle in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)
	SourceFetchDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobscout_source_fetch_duration_seconds",
			Help:       "Duration of a single source fetch.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"source"},
	)
	PostingsFetchedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_postings_fetched_total",
			Help: "Total number of postings returned by sources.",
		},
		[]string{"source"},
	)
	PostingsUpsertedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_postings_upserted_total",
			Help: "Total number of postings written to the store.",
		},
		[]string{"source"},
	)
	ScoringCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_scoring_total",
			Help: "Total number of scored postings by scoring path.",
		},
		[]string{"path"},
	)
	MatchesCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_matches_created_total",
			Help: "Total number of created matches.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(IngestionCycleDuration)
		prometheus.MustRegister(SourceFetchDuration)
		prometheus.MustRegister(PostingsFetchedCounter)
		prometheus.MustRegister(PostingsUpsertedCounter)
		prometheus.MustRegister(ScoringCounter)
		prometheus.MustRegister(MatchesCreatedCounter)
	})
}

func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
