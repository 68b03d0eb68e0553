package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"strings"
	"sync"
	"testing"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, prefs models.Preferences, profile models.Profile,
	posting models.JobPosting) models.Score {
	return m.Called(ctx, prefs, profile, posting).Get(0).(models.Score)
}

type mockMatches struct {
	mock.Mock
}

func (m *mockMatches) MatchedPostingIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *mockMatches) Create(ctx context.Context, match models.MatchResult) (bool, error) {
	args := m.Called(ctx, match)
	return args.Bool(0), args.Error(1)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.MatchFound
}

func (r *recordedEvents) handle(event events.MatchFound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) all() []events.MatchFound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.MatchFound(nil), r.events...)
}

var testMatchingConfig = config.MatchingConfig{CandidateLimit: 20, MaxScored: 5, NotifyThreshold: 80}

func seedPostings(t *testing.T, repo *repositories.Postings, n int, title string) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", strings.ReplaceAll(strings.ToLower(title), " ", "-"), i)
		require.NoError(t, repo.Upsert(context.Background(), models.JobPosting{
			PostingID:   models.NewPostingID("remotive", id),
			SourceName:  "remotive",
			SourceJobID: id,
			Title:       title,
			IsRemote:    i%2 == 0,
		}))
	}
}

func fixedScorer(score int) *mockScorer {
	scorer := &mockScorer{}
	scorer.On("Score", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.Score{Score: score, ReasonSummary: "fixed", Reasons: []models.Reason{{Label: "General", Detail: "fixed"}}})
	return scorer
}

func Test_MatchingRunner_RequiresDesiredTitles(t *testing.T) {
	matches := &mockMatches{}
	runner := NewMatchingRunner(EventBus.New(), &mockPostingList{}, matches, fixedScorer(50), testMatchingConfig)

	for _, titles := range [][]string{nil, {}, {"  ", ""}} {
		_, err := runner.Run(context.Background(), "user-1", models.Preferences{DesiredTitles: titles}, models.Profile{})
		assert.ErrorIs(t, err, ErrPreconditionFailed)
	}
	matches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func Test_MatchingRunner_CapsScoredPostingsAndNeverRescores(t *testing.T) {
	ctx := context.Background()
	db := newTestDb(t)
	postings := repositories.NewPostingsRepository(db.DB)
	matches := repositories.NewMatchesRepository(db.DB)
	seedPostings(t, postings, 8, "Go Engineer")
	seedPostings(t, postings, 3, "Accountant")

	scorer := fixedScorer(60)
	runner := NewMatchingRunner(EventBus.New(), postings, matches, scorer, testMatchingConfig)
	prefs := models.Preferences{UserID: "user-1", DesiredTitles: []string{"engineer"}}

	first, err := runner.Run(ctx, "user-1", prefs, models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, 5, first.MatchesCreated)

	second, err := runner.Run(ctx, "user-1", prefs, models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, 3, second.MatchesCreated)

	third, err := runner.Run(ctx, "user-1", prefs, models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, 0, third.MatchesCreated)
	scorer.AssertNumberOfCalls(t, "Score", 8)

	stored, err := matches.ListByUser(ctx, "user-1", "", 100)
	require.NoError(t, err)
	require.Len(t, stored, 8)
	for _, match := range stored {
		assert.Equal(t, models.MatchPending, match.Status)
		assert.True(t, strings.HasPrefix(match.MatchID, "match_"))
		assert.Contains(t, match.JobPostingID, "go-engineer")
	}
}

func Test_MatchingRunner_RemoteOnlyFiltersCandidates(t *testing.T) {
	ctx := context.Background()
	db := newTestDb(t)
	postings := repositories.NewPostingsRepository(db.DB)
	seedPostings(t, postings, 4, "Backend Developer")

	runner := NewMatchingRunner(EventBus.New(), postings, repositories.NewMatchesRepository(db.DB), fixedScorer(40), testMatchingConfig)
	prefs := models.Preferences{DesiredTitles: []string{"Backend"}, RemoteOnly: true}

	result, err := runner.Run(ctx, "user-2", prefs, models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.MatchesCreated)
}

func Test_MatchingRunner_PublishesOnlyNewHighScores(t *testing.T) {
	ctx := context.Background()
	candidates := []models.JobPosting{
		{PostingID: "remotive_1", Title: "Go Engineer"},
		{PostingID: "remotive_2", Title: "Go Engineer II"},
		{PostingID: "remotive_3", Title: "Go Engineer III"},
		{PostingID: "remotive_4", Title: "Go Engineer IV"},
	}

	postings := &mockPostingList{postings: candidates}
	matches := &mockMatches{}
	matches.On("MatchedPostingIDs", mock.Anything, "user-1").Return(map[string]struct{}{"remotive_4": {}}, nil)
	matches.On("Create", mock.Anything, mock.MatchedBy(func(m models.MatchResult) bool { return m.JobPostingID == "remotive_3" })).
		Return(false, nil)
	matches.On("Create", mock.Anything, mock.Anything).Return(true, nil)

	scorer := &mockScorer{}
	scorer.On("Score", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(p models.JobPosting) bool {
		return p.PostingID == "remotive_2"
	})).Return(models.Score{Score: 79})
	scorer.On("Score", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(models.Score{Score: 92})

	bus := EventBus.New()
	recorded := &recordedEvents{}
	require.NoError(t, bus.SubscribeAsync(events.MatchFoundTopic, recorded.handle, false))

	prefs := models.Preferences{DesiredTitles: []string{"Go"}, NotificationsEnabled: true, TelegramChatID: 777}
	result, err := NewMatchingRunner(bus, postings, matches, scorer, testMatchingConfig).Run(ctx, "user-1", prefs, models.Profile{})
	require.NoError(t, err)
	bus.WaitAsync()

	assert.Equal(t, 2, result.MatchesCreated)
	published := recorded.all()
	require.Len(t, published, 1)
	assert.Equal(t, "remotive_1", published[0].Posting.PostingID)
	assert.Equal(t, int64(777), published[0].ChatID)
	assert.Equal(t, 92, published[0].Match.Score)
	assert.Equal(t, []string{"Go"}, postings.filter.TitleKeywords)
	assert.Equal(t, 20, postings.filter.Limit)
}

func Test_MatchingRunner_PropagatesStorageErrors(t *testing.T) {
	matches := &mockMatches{}
	matches.On("MatchedPostingIDs", mock.Anything, "user-1").Return(map[string]struct{}{}, errors.New("connection lost"))

	runner := NewMatchingRunner(EventBus.New(), &mockPostingList{}, matches, fixedScorer(50), testMatchingConfig)
	_, err := runner.Run(context.Background(), "user-1", models.Preferences{DesiredTitles: []string{"Go"}}, models.Profile{})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPreconditionFailed)
}

type mockPostingList struct {
	postings []models.JobPosting
	filter   repositories.PostingFilter
}

func (m *mockPostingList) List(_ context.Context, filter repositories.PostingFilter) ([]models.JobPosting, error) {
	m.filter = filter
	return m.postings, nil
}

func Test_LoadCandidate_DefaultsMissingRecords(t *testing.T) {
	ctx := context.Background()
	candidates := repositories.NewCandidatesRepository(newTestDb(t).DB)

	prefs, profile, err := LoadCandidate(ctx, candidates, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", prefs.UserID)
	assert.Empty(t, prefs.DesiredTitles)
	assert.False(t, profile.HasResume())

	require.NoError(t, candidates.SavePreferences(ctx, models.Preferences{UserID: "someone", DesiredTitles: []string{"SRE"}}))
	prefs, _, err = LoadCandidate(ctx, candidates, "someone")
	require.NoError(t, err)
	assert.Equal(t, []string{"SRE"}, []string(prefs.DesiredTitles))
}
