package sources

import (
	"context"
	"errors"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"regexp"
	"strings"
)

const (
	remoteCoBaseURL = "https://remote.co"
	remoteCoPath    = "/remote-jobs/developer/"
)

var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Cache-Control":             "no-cache",
	"Referer":                   "https://remote.co/",
	"Upgrade-Insecure-Requests": "1",
}

// Card markup of the listing page. Expect these to break whenever the site is redesigned.
var (
	remoteCoCardRegexp    = regexp.MustCompile(`(?s)<a[^>]+href="(/job/[^"#?]+)"[^>]*>(.*?)</a>`)
	remoteCoTitleRegexp   = regexp.MustCompile(`(?s)<span[^>]*font-weight-bold[^>]*>(.*?)</span>`)
	remoteCoCompanyRegexp = regexp.MustCompile(`(?s)<p[^>]*text-secondary[^>]*>(.*?)</p>`)
	remoteCoDateRegexp    = regexp.MustCompile(`(?s)<date[^>]*>(.*?)</date>`)
)

// RemoteCo scrapes job cards from an HTML listing page.
type RemoteCo struct {
	client           *Client
	baseURL          string
	descriptionLimit int
}

func NewRemoteCo(client *Client, descriptionLimit int) *RemoteCo {
	return &RemoteCo{client: client, baseURL: remoteCoBaseURL, descriptionLimit: descriptionLimit}
}

func (r *RemoteCo) Name() string {
	return SourceRemoteCo
}

func (r *RemoteCo) Fetch(ctx context.Context) []models.JobPosting {
	return bestEffort(r.Name(), func() ([]models.JobPosting, error) { return r.fetch(ctx) })
}

func (r *RemoteCo) fetch(ctx context.Context) ([]models.JobPosting, error) {
	body, err := r.client.Get(ctx, r.baseURL+remoteCoPath, browserHeaders)
	if err != nil {
		return nil, err
	}

	cards := remoteCoCardRegexp.FindAllStringSubmatch(string(body), -1)
	if len(cards) == 0 {
		return nil, errors.New("no job cards found, page markup may have changed")
	}

	seen := make(map[string]struct{}, len(cards))
	postings := make([]models.JobPosting, 0, len(cards))
	for _, card := range cards {
		link := canonicalURL(r.baseURL + card[1])
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		if posting, ok := r.parseCard(link, card[2]); ok {
			postings = append(postings, posting)
		}
	}

	return postings, nil
}

func (r *RemoteCo) parseCard(link string, content string) (models.JobPosting, bool) {
	title := firstGroup(remoteCoTitleRegexp, content)
	if title == "" {
		return models.JobPosting{}, false
	}

	company, employmentType, location := "", "", "Remote"
	if meta := firstGroup(remoteCoCompanyRegexp, content); meta != "" {
		parts := splitHeader(meta)
		if len(parts) > 0 {
			company = parts[0]
		}
		if len(parts) > 1 {
			employmentType = NormalizeEmploymentType(parts[1])
		}
		if len(parts) > 2 && parts[2] != "" {
			location = parts[2]
		}
	}

	description := StripTags(content)

	return models.JobPosting{
		SourceName:     SourceRemoteCo,
		SourceJobID:    HashID(link),
		SourceURL:      link,
		Title:          title,
		CompanyName:    company,
		LocationText:   location,
		IsRemote:       DetectRemoteOr(true, location, description),
		EmploymentType: employmentType,
		Description:    Truncate(description, r.descriptionLimit),
		Category:       "Developer",
		Tags:           []string{},
		PostedAt:       parseTime(firstGroup(remoteCoDateRegexp, content), "2006-01-02", "January 2, 2006"),
	}, true
}

func firstGroup(re *regexp.Regexp, s string) string {
	match := re.FindStringSubmatch(s)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(StripTags(match[1]))
}
