package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
)

var ErrPreconditionFailed = errors.New("at least one desired title is required")

type candidatePostings interface {
	List(ctx context.Context, filter repositories.PostingFilter) ([]models.JobPosting, error)
}

type matchRepository interface {
	MatchedPostingIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	Create(ctx context.Context, match models.MatchResult) (bool, error)
}

type scorer interface {
	Score(ctx context.Context, prefs models.Preferences, profile models.Profile, posting models.JobPosting) models.Score
}

type MatchingResult struct {
	MatchesCreated int `json:"matches_created"`
}

// MatchingRunner scores fresh postings for one user and stores the results.
type MatchingRunner struct {
	bus      EventBus.Bus
	postings candidatePostings
	matches  matchRepository
	scorer   scorer
	config   config.MatchingConfig
}

func NewMatchingRunner(bus EventBus.Bus, postings candidatePostings, matches matchRepository, scorer scorer,
	cfg config.MatchingConfig) *MatchingRunner {

	return &MatchingRunner{
		bus:      bus,
		postings: postings,
		matches:  matches,
		scorer:   scorer,
		config:   cfg,
	}
}

func (m *MatchingRunner) Run(ctx context.Context, userID string, prefs models.Preferences,
	profile models.Profile) (MatchingResult, error) {

	titles := lo.Compact(lo.Map(prefs.DesiredTitles, func(title string, _ int) string {
		return strings.TrimSpace(title)
	}))
	if len(titles) == 0 {
		return MatchingResult{}, ErrPreconditionFailed
	}

	matched, err := m.matches.MatchedPostingIDs(ctx, userID)
	if err != nil {
		return MatchingResult{}, errors.Wrap(err, "failed to load matched postings")
	}

	candidates, err := m.postings.List(ctx, repositories.PostingFilter{
		TitleKeywords: titles,
		RemoteOnly:    prefs.RemoteOnly,
		Limit:         m.config.CandidateLimit,
	})
	if err != nil {
		return MatchingResult{}, errors.Wrap(err, "failed to load candidate postings")
	}

	fresh := lo.Filter(candidates, func(posting models.JobPosting, _ int) bool {
		_, seen := matched[posting.PostingID]
		return !seen
	})
	if len(fresh) > m.config.MaxScored {
		fresh = fresh[:m.config.MaxScored]
	}

	var notable []events.MatchFound
	created := 0

	for _, posting := range fresh {
		score := m.scorer.Score(ctx, prefs, profile, posting)
		match := models.NewMatchResult(newMatchID(), userID, posting.PostingID, score)

		isNew, err := m.matches.Create(ctx, match)
		if err != nil {
			return MatchingResult{MatchesCreated: created}, errors.Wrapf(err, "failed to save match for %s", posting.PostingID)
		}
		if !isNew {
			continue
		}

		created++
		if match.Score >= m.config.NotifyThreshold {
			notable = append(notable, events.MatchFound{
				UserID:  userID,
				ChatID:  chatID(prefs),
				Match:   match,
				Posting: posting,
			})
		}
	}

	metrics.MatchesCreatedCounter.Add(float64(created))
	log.Infof("matching for user %s created %d matches, %d notable", userID, created, len(notable))

	for _, event := range notable {
		m.bus.Publish(events.MatchFoundTopic, event)
	}

	return MatchingResult{MatchesCreated: created}, nil
}

func newMatchID() string {
	return "match_" + shortUUID()
}

// chatID is zero unless the user opted into Telegram notifications.
func chatID(prefs models.Preferences) int64 {
	if !prefs.NotificationsEnabled {
		return 0
	}
	return prefs.TelegramChatID
}
