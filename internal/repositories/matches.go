package repositories

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Matches struct {
	db *gorm.DB
}

func NewMatchesRepository(db *gorm.DB) *Matches {
	return &Matches{db: db}
}

// Create stores the match unless the user already has one for the posting.
// It reports whether a new row was written.
func (m *Matches) Create(ctx context.Context, match models.MatchResult) (bool, error) {
	match.ID = 0
	res := m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "job_posting_id"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (m *Matches) MatchedPostingIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	err := m.db.WithContext(ctx).Model(&models.MatchResult{}).
		Where("user_id = ?", userID).
		Pluck("job_posting_id", &ids).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result, nil
}

func (m *Matches) ListByUser(ctx context.Context, userID string, status models.MatchStatus, limit int) ([]models.MatchResult, error) {
	query := m.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var matches []models.MatchResult
	err := query.Order("score DESC").Order("id").Find(&matches).Error
	return matches, err
}

// Recent returns the newest matches of a user first.
func (m *Matches) Recent(ctx context.Context, userID string, limit int) ([]models.MatchResult, error) {
	var matches []models.MatchResult
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

func (m *Matches) CountByStatus(ctx context.Context, userID string) (map[models.MatchStatus]int64, error) {
	var rows []struct {
		Status models.MatchStatus
		Total  int64
	}
	err := m.db.WithContext(ctx).Model(&models.MatchResult{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[models.MatchStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}

func (m *Matches) Get(ctx context.Context, userID, matchID string) (*models.MatchResult, error) {
	var match models.MatchResult
	err := m.db.WithContext(ctx).Where("user_id = ? AND match_id = ?", userID, matchID).First(&match).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &match, nil
}

func (m *Matches) UpdateStatus(ctx context.Context, userID, matchID string, status models.MatchStatus) (*models.MatchResult, error) {
	match, err := m.Get(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	if !models.IsTransitionAllowed(match.Status, status) {
		return nil, models.ErrTransitionNotAllowed
	}

	// the status guard keeps two concurrent actions from both succeeding
	res := m.db.WithContext(ctx).Model(&models.MatchResult{}).
		Where("id = ? AND status = ?", match.ID, match.Status).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrTransitionNotAllowed
	}

	match.Status = status
	return match, nil
}
