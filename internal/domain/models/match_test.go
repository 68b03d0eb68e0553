package models

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_MatchStatusTransitions(t *testing.T) {
	assert.True(t, IsTransitionAllowed(MatchPending, MatchApproved))
	assert.True(t, IsTransitionAllowed(MatchPending, MatchRejected))
	assert.True(t, IsTransitionAllowed(MatchApproved, MatchApplied))

	assert.False(t, IsTransitionAllowed(MatchRejected, MatchApproved))
	assert.False(t, IsTransitionAllowed(MatchPending, MatchApplied))
	assert.False(t, IsTransitionAllowed(MatchApplied, MatchPending))
}

func Test_StatusForAction(t *testing.T) {
	status, ok := StatusForAction("approve")
	assert.True(t, ok)
	assert.Equal(t, MatchApproved, status)

	_, ok = StatusForAction("archive")
	assert.False(t, ok)
}

func Test_NewPostingID_IsSourcePrefixed(t *testing.T) {
	assert.Equal(t, "remotive_1234", NewPostingID("remotive", "1234"))
}
