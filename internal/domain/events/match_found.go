package events

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
)

var MatchFoundTopic = "MatchFoundEvent"

type MatchFound struct {
	UserID  string
	ChatID  int64
	Match   models.MatchResult
	Posting models.JobPosting
}
