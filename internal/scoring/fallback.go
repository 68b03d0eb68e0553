package scoring

import (
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"strings"
)

const (
	fallbackBase        = 50
	titleMatchBonus     = 20
	remoteMatchBonus    = 10
	locationMatchBonus  = 10
	resumeOnFileBonus   = 5
	fallbackSummary     = "Scored based on preference matching"
	defaultReasonLabel  = "General"
	defaultReasonDetail = "Basic keyword matching applied"
)

// Fallback scores a posting with fixed rules. Title and location rules take
// the first preference that matches, in the order the user declared them.
func Fallback(prefs models.Preferences, profile models.Profile, posting models.JobPosting) models.Score {
	score := fallbackBase
	var reasons []models.Reason

	if title, ok := firstContained(prefs.DesiredTitles, posting.Title); ok {
		score += titleMatchBonus
		reasons = append(reasons, models.Reason{Label: "Title Match", Detail: fmt.Sprintf("Job title matches '%s'", title)})
	}

	if prefs.RemoteOnly && posting.IsRemote {
		score += remoteMatchBonus
		reasons = append(reasons, models.Reason{Label: "Remote", Detail: "Job is remote as preferred"})
	}

	if location, ok := firstContained(prefs.PreferredLocations, posting.LocationText); ok {
		score += locationMatchBonus
		reasons = append(reasons, models.Reason{Label: "Location Match", Detail: fmt.Sprintf("Location matches '%s'", location)})
	}

	if profile.HasResume() {
		score += resumeOnFileBonus
		reasons = append(reasons, models.Reason{Label: "Resume", Detail: "Resume on file was considered"})
	}

	if len(reasons) == 0 {
		reasons = []models.Reason{{Label: defaultReasonLabel, Detail: defaultReasonDetail}}
	}

	return models.Score{
		Score:         clamp(score),
		ReasonSummary: fallbackSummary,
		Reasons:       reasons,
	}
}

func firstContained(needles []string, haystack string) (string, bool) {
	haystack = strings.ToLower(haystack)
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(needle)) {
			return needle, true
		}
	}
	return "", false
}
