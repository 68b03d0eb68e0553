package sources

import (
	"context"
	"errors"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type stubSource struct {
	name  string
	fetch func(ctx context.Context) []models.JobPosting
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context) []models.JobPosting { return s.fetch(ctx) }

func fixed(name string, ids ...string) stubSource {
	return stubSource{name: name, fetch: func(ctx context.Context) []models.JobPosting {
		var postings []models.JobPosting
		for _, id := range ids {
			postings = append(postings, models.JobPosting{SourceName: name, SourceJobID: id, Title: "t"})
		}
		return postings
	}}
}

func Test_Registry_Each_IsolatesPanicsAndKeepsOrder(t *testing.T) {
	panicking := stubSource{name: "panicking", fetch: func(ctx context.Context) []models.JobPosting {
		panic("upstream markup changed")
	}}
	registry := NewRegistry(time.Second, fixed("first", "1", "2"), panicking, fixed("last", "3"))

	var results []Result
	registry.Each(context.Background(), func(r Result) { results = append(results, r) })

	require.Len(t, results, 3)
	assert.Equal(t, []string{"first", "panicking", "last"}, registry.Names())
	assert.Equal(t, "first", results[0].Source)
	assert.Len(t, results[0].Postings, 2)
	assert.Equal(t, "first_1", results[0].Postings[0].PostingID)
	assert.NotNil(t, results[0].Postings[0].Tags)
	assert.Empty(t, results[1].Postings)
	assert.Equal(t, "last", results[2].Source)
	assert.Len(t, results[2].Postings, 1)
	assert.False(t, results[2].CompletedAt.Before(results[2].StartedAt))
}

func Test_Registry_DropsPostingsWithoutIdentity(t *testing.T) {
	source := stubSource{name: "partial", fetch: func(ctx context.Context) []models.JobPosting {
		return []models.JobPosting{
			{SourceJobID: "ok", Title: "kept"},
			{Title: "no id"},
		}
	}}
	registry := NewRegistry(time.Second, source)

	var result Result
	registry.Each(context.Background(), func(r Result) { result = r })

	require.Len(t, result.Postings, 1)
	assert.Equal(t, "partial", result.Postings[0].SourceName)
	assert.Equal(t, "partial_ok", result.Postings[0].PostingID)
}

func Test_Registry_AppliesFetchTimeout(t *testing.T) {
	var deadlineSet bool
	source := stubSource{name: "slow", fetch: func(ctx context.Context) []models.JobPosting {
		_, deadlineSet = ctx.Deadline()
		<-ctx.Done()
		return nil
	}}
	registry := NewRegistry(20*time.Millisecond, source)

	var result Result
	registry.Each(context.Background(), func(r Result) { result = r })

	assert.True(t, deadlineSet)
	assert.Empty(t, result.Postings)
}

func Test_Build_RespectsEnabledSourcesAndOrder(t *testing.T) {
	built, err := Build(NewClient(""), Settings{DescriptionLimit: 100}, []string{SourceArbeitnow, SourceRemotive})
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, SourceRemotive, built[0].Name())
	assert.Equal(t, SourceArbeitnow, built[1].Name())

	all, err := Build(NewClient(""), Settings{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(KnownSources))

	_, err = Build(NewClient(""), Settings{}, []string{"monster"})
	assert.Error(t, err)
}

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func Test_Client_Get_SendsHeadersAndFailsOnNon200(t *testing.T) {
	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://jobs.example/ok" &&
			req.Header.Get("User-Agent") == "agent" && req.Header.Get("Accept") == "text/html"
	})).Return(&http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("fine"))}, nil)
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://jobs.example/blocked"
	})).Return(&http.Response{StatusCode: 403, Body: io.NopCloser(strings.NewReader("denied"))}, nil)
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://jobs.example/down"
	})).Return(nil, errors.New("connection refused"))

	client := NewClient("agent")
	client.SetHTTPClient(mockClient)
	client.SetRateLimit(1000)

	body, err := client.Get(context.Background(), "https://jobs.example/ok", map[string]string{"Accept": "text/html"})
	require.NoError(t, err)
	assert.Equal(t, "fine", string(body))

	_, err = client.Get(context.Background(), "https://jobs.example/blocked", nil)
	assert.ErrorContains(t, err, "403")

	_, err = client.Get(context.Background(), "https://jobs.example/down", nil)
	assert.ErrorContains(t, err, "connection refused")
}
