package notifier

import (
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/samber/lo"
	"html"
	"strings"
)

const maxReasonsInAlert = 3

var alertActions = []string{"Review", "Approve", "Reject"}

// BuildMatchAlert renders a match as Telegram HTML.
func BuildMatchAlert(event events.MatchFound) string {
	location := event.Posting.LocationText
	if location == "" {
		location = "Location not provided"
	}

	reasons := lo.FilterMap(event.Match.Reasons, func(r models.Reason, _ int) (string, bool) {
		return r.Detail, r.Detail != ""
	})
	if len(reasons) == 0 {
		summary := event.Match.ReasonSummary
		if summary == "" {
			summary = "Strong profile alignment"
		}
		reasons = []string{summary}
	}
	if len(reasons) > maxReasonsInAlert {
		reasons = reasons[:maxReasonsInAlert]
	}

	lines := []string{
		"🔔 New job match found",
		"",
		fmt.Sprintf("<b>Job Summary</b>: %s at %s (%s)",
			html.EscapeString(event.Posting.Title), html.EscapeString(event.Posting.CompanyName), html.EscapeString(location)),
		fmt.Sprintf("<b>Score</b>: %d", event.Match.Score),
		"<b>Top Match Reasons</b>:",
	}
	for i, reason := range reasons {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, html.EscapeString(reason)))
	}
	if event.Posting.SourceURL != "" {
		lines = append(lines, "", html.EscapeString(event.Posting.SourceURL))
	}
	lines = append(lines, "", "Actions: "+strings.Join(alertActions, " | "))

	return strings.Join(lines, "\n")
}
