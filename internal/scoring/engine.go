package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	log "github.com/sirupsen/logrus"
	"time"
)

// Generator is an LLM backend that answers a prompt with raw text.
type Generator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// Engine scores postings for a candidate. It never fails: every problem with
// the LLM backend ends in the deterministic fallback.
type Engine struct {
	generator Generator
	cache     ScoreCache
	timeout   time.Duration
}

// NewEngine creates an engine. Both generator and cache may be nil,
// without a generator every posting is scored by the fallback rules.
func NewEngine(generator Generator, cache ScoreCache) *Engine {
	return &Engine{generator: generator, cache: cache}
}

// SetTimeout bounds a single LLM request.
func (e *Engine) SetTimeout(timeout time.Duration) {
	e.timeout = timeout
}

func (e *Engine) Score(ctx context.Context, prefs models.Preferences, profile models.Profile,
	posting models.JobPosting) models.Score {

	if e.generator == nil {
		metrics.ScoringCounter.WithLabelValues("fallback").Inc()
		return Fallback(prefs, profile, posting)
	}

	prompt := BuildPrompt(prefs, profile, posting)
	key := cacheKey(prompt)

	if e.cache != nil {
		if cached, found := e.cache.Get(ctx, key); found {
			metrics.ScoringCounter.WithLabelValues("cache").Inc()
			return cached
		}
	}

	v := e.judge(ctx, prompt)
	if !v.scored() {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Warnf("posting %s is unscorable by llm, using fallback: %s", posting.PostingID, v.reason)
		metrics.ScoringCounter.WithLabelValues("fallback").Inc()
		return Fallback(prefs, profile, posting)
	}

	metrics.ScoringCounter.WithLabelValues("llm").Inc()
	if e.cache != nil {
		e.cache.Set(ctx, key, *v.score)
	}
	return *v.score
}

func (e *Engine) judge(ctx context.Context, prompt string) verdict {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.generator.GenerateResponse(ctx, prompt)
	if err != nil {
		return unscorable("llm request failed: " + err.Error())
	}
	return parseVerdict(ctx, raw)
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
