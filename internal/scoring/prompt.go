package scoring

import (
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/sources"
	"strings"
)

const (
	resumeExcerptLimit      = 2000
	descriptionExcerptLimit = 1500
)

const SystemInstruction = "You are a job matching AI. Return ONLY valid JSON with score (0-100), " +
	"reason_summary, and reasons array."

const promptTemplate = `Score how well this candidate matches the job posting. Return ONLY valid JSON.

Candidate:
%s

Job Posting:
%s

Return JSON: {"score": <0-100>, "reason_summary": "<one sentence>", "reasons": [{"label": "<category>", "detail": "<explanation>"}]}`

// BuildPrompt renders the candidate and the posting into a bounded prompt.
// The output is deterministic, so it doubles as the score cache key.
func BuildPrompt(prefs models.Preferences, profile models.Profile, posting models.JobPosting) string {
	return fmt.Sprintf(promptTemplate, describeCandidate(prefs, profile), describePosting(posting))
}

func describeCandidate(prefs models.Preferences, profile models.Profile) string {
	lines := []string{
		"Desired Titles: " + strings.Join(prefs.DesiredTitles, ", "),
		"Preferred Locations: " + strings.Join(prefs.PreferredLocations, ", "),
		fmt.Sprintf("Remote Only: %t", prefs.RemoteOnly),
	}
	if prefs.MinSalary > 0 {
		lines = append(lines, "Min Salary: $"+groupThousands(prefs.MinSalary))
	}
	if len(prefs.EmploymentTypes) > 0 {
		lines = append(lines, "Employment Types: "+strings.Join(prefs.EmploymentTypes, ", "))
	}
	if profile.Summary != "" {
		lines = append(lines, "Summary: "+profile.Summary)
	}
	if profile.YearsExperience > 0 {
		lines = append(lines, fmt.Sprintf("Experience: %d years", profile.YearsExperience))
	}
	if profile.HasResume() {
		lines = append(lines, "Resume: "+sources.Truncate(profile.ResumeText, resumeExcerptLimit))
	}
	return strings.Join(lines, "\n")
}

func describePosting(posting models.JobPosting) string {
	lines := []string{
		"Title: " + posting.Title,
		"Company: " + posting.CompanyName,
		"Location: " + orDefault(posting.LocationText, "Not specified"),
		fmt.Sprintf("Remote: %t", posting.IsRemote),
		"Type: " + orDefault(posting.EmploymentType, "Not specified"),
	}
	if posting.HasSalary() {
		lines = append(lines, "Salary: "+salaryText(posting.SalaryMin)+" - "+salaryText(posting.SalaryMax))
	}
	if posting.Description != "" {
		description := posting.Description
		if len([]rune(description)) > descriptionExcerptLimit {
			description = sources.Truncate(description, descriptionExcerptLimit) + "..."
		}
		lines = append(lines, "Description: "+description)
	}
	return strings.Join(lines, "\n")
}

func salaryText(amount int) string {
	if amount <= 0 {
		return "?"
	}
	return "$" + groupThousands(amount)
}

func groupThousands(n int) string {
	digits := fmt.Sprintf("%d", n)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	return sb.String()
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
