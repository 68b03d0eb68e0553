package services

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/repositories"
	"github.com/pkg/errors"
)

type CandidateRepository interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// LoadCandidate returns the stored preferences and profile of a user.
// Missing records come back empty rather than as an error.
func LoadCandidate(ctx context.Context, candidates CandidateRepository, userID string) (models.Preferences, models.Profile, error) {
	prefs := models.Preferences{UserID: userID}
	profile := models.Profile{UserID: userID}

	storedPrefs, err := candidates.GetPreferences(ctx, userID)
	switch {
	case err == nil:
		prefs = *storedPrefs
	case !errors.Is(err, repositories.ErrNotFound):
		return prefs, profile, errors.Wrap(err, "failed to load preferences")
	}

	storedProfile, err := candidates.GetProfile(ctx, userID)
	switch {
	case err == nil:
		profile = *storedProfile
	case !errors.Is(err, repositories.ErrNotFound):
		return prefs, profile, errors.Wrap(err, "failed to load profile")
	}

	return prefs, profile, nil
}
