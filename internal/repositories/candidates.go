package repositories

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Candidates struct {
	db *gorm.DB
}

func NewCandidatesRepository(db *gorm.DB) *Candidates {
	return &Candidates{db: db}
}

func (c *Candidates) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	var prefs models.Preferences
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &prefs, nil
}

func (c *Candidates) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&prefs).Error
}

func (c *Candidates) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &profile, nil
}

func (c *Candidates) SaveProfile(ctx context.Context, profile models.Profile) error {
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&profile).Error
}
