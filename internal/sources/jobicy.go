package sources

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"net/url"
	"strings"
	"time"
)

const jobicyFeedURL = "https://jobicy.com/"

// Jobicy only supports keyword search, so every keyword is queried separately.
type Jobicy struct {
	client           *Client
	feedURL          string
	keywords         []string
	queryTimeout     time.Duration
	descriptionLimit int
}

// NewJobicy creates the adapter. A positive queryTimeout bounds every keyword query on its own.
func NewJobicy(client *Client, keywords []string, queryTimeout time.Duration, descriptionLimit int) *Jobicy {
	return &Jobicy{
		client:           client,
		feedURL:          jobicyFeedURL,
		keywords:         keywords,
		queryTimeout:     queryTimeout,
		descriptionLimit: descriptionLimit,
	}
}

func (j *Jobicy) Name() string {
	return SourceJobicy
}

func (j *Jobicy) Fetch(ctx context.Context) []models.JobPosting {
	return bestEffort(j.Name(), func() ([]models.JobPosting, error) { return j.fetch(ctx), nil })
}

func (j *Jobicy) fetch(ctx context.Context) []models.JobPosting {
	var all []models.JobPosting
	for _, keyword := range j.keywords {
		postings, err := j.fetchKeyword(ctx, keyword)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeSourceApi).
				Errorf("jobicy query %q failed: %v", keyword, err)
			continue
		}
		all = append(all, postings...)
	}

	return lo.UniqBy(all, func(p models.JobPosting) string { return p.SourceJobID })
}

func (j *Jobicy) fetchKeyword(ctx context.Context, keyword string) ([]models.JobPosting, error) {
	if j.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.queryTimeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("feed", "job_feed")
	params.Set("search_keywords", keyword)

	feed, err := fetchFeed(ctx, j.client, j.feedURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	postings := make([]models.JobPosting, 0, len(feed.Items))
	for _, item := range feed.Items {
		if posting, ok := j.toPosting(item); ok {
			postings = append(postings, posting)
		}
	}
	return postings, nil
}

func (j *Jobicy) toPosting(item *gofeed.Item) (models.JobPosting, bool) {
	link := canonicalURL(item.Link)
	if link == "" {
		return models.JobPosting{}, false
	}

	company := listingValue(item.Extensions, "company")
	title := strings.TrimSpace(item.Title)
	if company == "" {
		company, title = SplitCompanyTitle(item.Title)
	}

	location := listingValue(item.Extensions, "location")
	description := StripTags(lo.Ternary(item.Content != "", item.Content, item.Description))

	return models.JobPosting{
		SourceName:     SourceJobicy,
		SourceJobID:    HashID(link),
		SourceURL:      link,
		Title:          title,
		CompanyName:    company,
		LocationText:   location,
		IsRemote:       DetectRemoteOr(true, location, description),
		EmploymentType: NormalizeEmploymentType(listingValue(item.Extensions, "job_type")),
		Description:    Truncate(description, j.descriptionLimit),
		Category:       strings.Join(item.Categories, ", "),
		Tags:           []string{},
		PostedAt:       timeOrZero(item.PublishedParsed),
	}, true
}

// listingValue reads a job_listing:<name> feed extension element.
func listingValue(extensions ext.Extensions, name string) string {
	values := extensions["job_listing"][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}
