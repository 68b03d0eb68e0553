package sources

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"strings"
	"time"
)

const arbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"

type arbeitnowResponse struct {
	Data []arbeitnowJob `json:"data"`
}

type arbeitnowJob struct {
	Slug        string   `json:"slug"`
	CompanyName string   `json:"company_name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	JobTypes    []string `json:"job_types"`
	Location    string   `json:"location"`
	CreatedAt   int64    `json:"created_at"`
}

// Arbeitnow reads the public job-board JSON API. The slug is the listing id.
type Arbeitnow struct {
	client           *Client
	baseURL          string
	descriptionLimit int
}

func NewArbeitnow(client *Client, descriptionLimit int) *Arbeitnow {
	return &Arbeitnow{client: client, baseURL: arbeitnowURL, descriptionLimit: descriptionLimit}
}

func (a *Arbeitnow) Name() string {
	return SourceArbeitnow
}

func (a *Arbeitnow) Fetch(ctx context.Context) []models.JobPosting {
	return bestEffort(a.Name(), func() ([]models.JobPosting, error) { return a.fetch(ctx) })
}

func (a *Arbeitnow) fetch(ctx context.Context) ([]models.JobPosting, error) {
	var response arbeitnowResponse
	if err := a.client.GetJSON(ctx, a.baseURL, &response); err != nil {
		return nil, err
	}

	postings := make([]models.JobPosting, 0, len(response.Data))
	for _, job := range response.Data {
		if strings.TrimSpace(job.Slug) == "" {
			continue
		}

		description := StripTags(job.Description)
		employmentType := ""
		if len(job.JobTypes) > 0 {
			employmentType = NormalizeEmploymentType(strings.ReplaceAll(job.JobTypes[0], " ", "-"))
		}

		tags := job.Tags
		if tags == nil {
			tags = []string{}
		}

		postedAt := time.Time{}
		if job.CreatedAt > 0 {
			postedAt = time.Unix(job.CreatedAt, 0).UTC()
		}

		postings = append(postings, models.JobPosting{
			SourceName:     SourceArbeitnow,
			SourceJobID:    job.Slug,
			SourceURL:      job.URL,
			Title:          job.Title,
			CompanyName:    job.CompanyName,
			LocationText:   job.Location,
			IsRemote:       job.Remote || DetectRemote(job.Location, description),
			EmploymentType: employmentType,
			Description:    Truncate(description, a.descriptionLimit),
			Tags:           tags,
			PostedAt:       postedAt,
		})
	}

	return postings, nil
}
