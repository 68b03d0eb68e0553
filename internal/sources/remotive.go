package sources

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"strconv"
	"time"
)

const remotiveURL = "https://remotive.com/api/remote-jobs"

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID                        int64    `json:"id"`
	URL                       string   `json:"url"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	Category                  string   `json:"category"`
	Tags                      []string `json:"tags"`
	JobType                   string   `json:"job_type"`
	PublicationDate           string   `json:"publication_date"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
}

// Remotive reads the remote-jobs JSON API.
type Remotive struct {
	client           *Client
	baseURL          string
	limit            int
	descriptionLimit int
}

func NewRemotive(client *Client, limit int, descriptionLimit int) *Remotive {
	return &Remotive{client: client, baseURL: remotiveURL, limit: limit, descriptionLimit: descriptionLimit}
}

func (r *Remotive) Name() string {
	return SourceRemotive
}

func (r *Remotive) Fetch(ctx context.Context) []models.JobPosting {
	return bestEffort(r.Name(), func() ([]models.JobPosting, error) { return r.fetch(ctx) })
}

func (r *Remotive) fetch(ctx context.Context) ([]models.JobPosting, error) {
	url := r.baseURL
	if r.limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", r.baseURL, r.limit)
	}

	var response remotiveResponse
	if err := r.client.GetJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	postings := make([]models.JobPosting, 0, len(response.Jobs))
	for _, job := range response.Jobs {
		if job.ID == 0 {
			continue
		}

		location := job.CandidateRequiredLocation
		if location == "" {
			location = "Worldwide"
		}

		employmentType := NormalizeEmploymentType(job.JobType)
		if employmentType == "" {
			employmentType = "full-time"
		}

		salaryMin, salaryMax := ParseSalaryRange(job.Salary)
		tags := job.Tags
		if tags == nil {
			tags = []string{}
		}

		postings = append(postings, models.JobPosting{
			SourceName:     SourceRemotive,
			SourceJobID:    strconv.FormatInt(job.ID, 10),
			SourceURL:      job.URL,
			Title:          job.Title,
			CompanyName:    job.CompanyName,
			LocationText:   location,
			IsRemote:       true,
			EmploymentType: employmentType,
			Description:    Truncate(StripTags(job.Description), r.descriptionLimit),
			Category:       job.Category,
			Tags:           tags,
			SalaryMin:      salaryMin,
			SalaryMax:      salaryMax,
			PostedAt:       parseTime(job.PublicationDate, "2006-01-02T15:04:05", time.RFC3339),
		})
	}

	return postings, nil
}
