package sources

import (
	"context"
	"errors"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	hnSearchURL   = "https://hn.algolia.com/api/v1/search_by_date"
	hnItemURL     = "https://hn.algolia.com/api/v1/items/"
	hnDiscussURL  = "https://news.ycombinator.com/item?id="
	hnThreadTitle = "who is hiring"
)

var paragraphRegexp = regexp.MustCompile(`(?i)<p\b[^>]*>`)

type hnSearchResponse struct {
	Hits []struct {
		ObjectID string `json:"objectID"`
		Title    string `json:"title"`
	} `json:"hits"`
}

type hnItem struct {
	ID        int64    `json:"id"`
	Text      string   `json:"text"`
	Author    string   `json:"author"`
	CreatedAt string   `json:"created_at"`
	Children  []hnItem `json:"children"`
}

// HackerNews harvests top-level comments of the latest "Who is hiring?" thread.
type HackerNews struct {
	client            *Client
	searchURL         string
	itemURL           string
	maxComments       int
	smallFetchTimeout time.Duration
	descriptionLimit  int
}

func NewHackerNews(client *Client, maxComments int, smallFetchTimeout time.Duration, descriptionLimit int) *HackerNews {
	return &HackerNews{
		client:            client,
		searchURL:         hnSearchURL,
		itemURL:           hnItemURL,
		maxComments:       maxComments,
		smallFetchTimeout: smallFetchTimeout,
		descriptionLimit:  descriptionLimit,
	}
}

func (h *HackerNews) Name() string {
	return SourceHackerNews
}

func (h *HackerNews) Fetch(ctx context.Context) []models.JobPosting {
	return bestEffort(h.Name(), func() ([]models.JobPosting, error) { return h.fetch(ctx) })
}

func (h *HackerNews) fetch(ctx context.Context) ([]models.JobPosting, error) {
	threadID, err := h.findThread(ctx)
	if err != nil {
		return nil, err
	}

	var thread hnItem
	if err := h.client.GetJSON(ctx, h.itemURL+threadID, &thread); err != nil {
		return nil, fmt.Errorf("error fetching thread %s: %w", threadID, err)
	}

	postings := make([]models.JobPosting, 0, len(thread.Children))
	for _, comment := range thread.Children {
		if h.maxComments > 0 && len(postings) >= h.maxComments {
			break
		}
		if posting, ok := h.parseComment(comment); ok {
			postings = append(postings, posting)
		}
	}

	return postings, nil
}

func (h *HackerNews) findThread(ctx context.Context) (string, error) {
	if h.smallFetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.smallFetchTimeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("tags", "story,author_whoishiring")
	params.Set("query", hnThreadTitle)
	params.Set("hitsPerPage", "5")

	var response hnSearchResponse
	if err := h.client.GetJSON(ctx, h.searchURL+"?"+params.Encode(), &response); err != nil {
		return "", fmt.Errorf("error searching hiring thread: %w", err)
	}

	for _, hit := range response.Hits {
		if strings.Contains(strings.ToLower(hit.Title), hnThreadTitle) {
			return hit.ObjectID, nil
		}
	}
	return "", errors.New("hiring thread not found")
}

// parseComment reads the conventional "Company | Title | Location | ..." header line.
func (h *HackerNews) parseComment(comment hnItem) (models.JobPosting, bool) {
	if comment.ID == 0 || strings.TrimSpace(comment.Text) == "" {
		return models.JobPosting{}, false
	}

	headerHTML := paragraphRegexp.Split(comment.Text, 2)[0]
	header := StripTags(headerHTML)
	parts := splitHeader(header)
	if len(parts) < 2 {
		return models.JobPosting{}, false
	}

	location := ""
	if len(parts) > 2 {
		location = parts[2]
	}

	description := StripTags(comment.Text)
	salaryMin, salaryMax := 0, 0
	for _, part := range parts[2:] {
		if salaryMin, salaryMax = ParseSalaryRange(part); salaryMin > 0 {
			break
		}
	}

	id := strconv.FormatInt(comment.ID, 10)
	return models.JobPosting{
		SourceName:     SourceHackerNews,
		SourceJobID:    id,
		SourceURL:      hnDiscussURL + id,
		Title:          parts[1],
		CompanyName:    parts[0],
		LocationText:   location,
		IsRemote:       DetectRemote(location, description),
		EmploymentType: employmentTypeFromText(header),
		Description:    Truncate(description, h.descriptionLimit),
		Category:       "Who is hiring",
		Tags:           []string{},
		SalaryMin:      salaryMin,
		SalaryMax:      salaryMax,
		PostedAt:       parseTime(comment.CreatedAt, time.RFC3339, "2006-01-02T15:04:05.000Z"),
	}, true
}

func splitHeader(header string) []string {
	var parts []string
	for _, part := range strings.Split(header, "|") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func employmentTypeFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "full-time"), strings.Contains(lower, "full time"):
		return "full-time"
	case strings.Contains(lower, "part-time"), strings.Contains(lower, "part time"):
		return "part-time"
	case strings.Contains(lower, "contract"):
		return "contract"
	case strings.Contains(lower, "intern"):
		return "internship"
	}
	return ""
}
