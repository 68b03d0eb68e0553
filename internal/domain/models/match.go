package models

import (
	"errors"
	"gorm.io/datatypes"
	"slices"
	"time"
)

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchApproved MatchStatus = "approved"
	MatchRejected MatchStatus = "rejected"
	MatchApplied  MatchStatus = "applied"
)

var ErrTransitionNotAllowed = errors.New("match status transition not allowed")

var allowedTransitions = map[MatchStatus][]MatchStatus{
	MatchPending:  {MatchApproved, MatchRejected},
	MatchApproved: {MatchApplied},
}

func IsTransitionAllowed(from, to MatchStatus) bool {
	return slices.Contains(allowedTransitions[from], to)
}

// StatusForAction maps a user action to the status it leads to.
func StatusForAction(action string) (MatchStatus, bool) {
	switch action {
	case "approve":
		return MatchApproved, true
	case "reject":
		return MatchRejected, true
	case "apply":
		return MatchApplied, true
	}
	return "", false
}

type Reason struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// Score is the outcome of scoring one posting for one candidate.
type Score struct {
	Score         int      `json:"score"`
	ReasonSummary string   `json:"reason_summary"`
	Reasons       []Reason `json:"reasons"`
}

type MatchResult struct {
	ID            uint                        `gorm:"primaryKey" json:"-"`
	MatchID       string                      `gorm:"size:32;uniqueIndex;not null" json:"match_id"`
	UserID        string                      `gorm:"size:64;not null;uniqueIndex:idx_match_user_posting" json:"user_id"`
	JobPostingID  string                      `gorm:"size:192;not null;uniqueIndex:idx_match_user_posting" json:"job_posting_id"`
	Score         int                         `gorm:"index" json:"score"`
	ReasonSummary string                      `json:"reason_summary"`
	Reasons       datatypes.JSONSlice[Reason] `json:"reasons"`
	Status        MatchStatus                 `gorm:"size:16;index" json:"status"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func NewMatchResult(matchID, userID, postingID string, score Score) MatchResult {
	return MatchResult{
		MatchID:       matchID,
		UserID:        userID,
		JobPostingID:  postingID,
		Score:         score.Score,
		ReasonSummary: score.ReasonSummary,
		Reasons:       score.Reasons,
		Status:        MatchPending,
	}
}
