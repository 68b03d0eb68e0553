package sources

import (
	"bytes"
	"context"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/mmcdole/gofeed"
	"net/url"
	"strings"
)

const weWorkRemotelyURL = "https://weworkremotely.com/remote-jobs.rss"

var feedHeaders = map[string]string{
	"Accept": "application/rss+xml, application/xml;q=0.9, */*;q=0.8",
}

// WeWorkRemotely reads the board's RSS feed. Items have no id, so the link hash is used.
type WeWorkRemotely struct {
	client           *Client
	feedURL          string
	descriptionLimit int
}

func NewWeWorkRemotely(client *Client, descriptionLimit int) *WeWorkRemotely {
	return &WeWorkRemotely{client: client, feedURL: weWorkRemotelyURL, descriptionLimit: descriptionLimit}
}

func (w *WeWorkRemotely) Name() string {
	return SourceWeWorkRemotely
}

func (w *WeWorkRemotely) Fetch(ctx context.Context) []models.JobPosting {
	return bestEffort(w.Name(), func() ([]models.JobPosting, error) { return w.fetch(ctx) })
}

func (w *WeWorkRemotely) fetch(ctx context.Context) ([]models.JobPosting, error) {
	feed, err := fetchFeed(ctx, w.client, w.feedURL)
	if err != nil {
		return nil, err
	}

	postings := make([]models.JobPosting, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := canonicalURL(item.Link)
		if link == "" {
			continue
		}

		company, title := SplitCompanyTitle(item.Title)
		location := strings.TrimSpace(item.Custom["region"])
		if location == "" {
			location = "Remote"
		}

		description := StripTags(item.Description)

		category := ""
		if len(item.Categories) > 0 {
			category = item.Categories[0]
		}

		postings = append(postings, models.JobPosting{
			SourceName:     SourceWeWorkRemotely,
			SourceJobID:    HashID(link),
			SourceURL:      link,
			Title:          title,
			CompanyName:    company,
			LocationText:   location,
			IsRemote:       DetectRemoteOr(true, location, description),
			EmploymentType: NormalizeEmploymentType(item.Custom["type"]),
			Description:    Truncate(description, w.descriptionLimit),
			Category:       category,
			Tags:           []string{},
			PostedAt:       timeOrZero(item.PublishedParsed),
		})
	}

	return postings, nil
}

func fetchFeed(ctx context.Context, client *Client, feedURL string) (*gofeed.Feed, error) {
	body, err := client.Get(ctx, feedURL, feedHeaders)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}
	return feed, nil
}

// canonicalURL drops the fragment and tracking parameters so the same listing hashes the same way.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""

	query := u.Query()
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			query.Del(key)
		}
	}
	u.RawQuery = query.Encode()
	return u.String()
}
