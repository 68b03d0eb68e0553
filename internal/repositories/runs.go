package repositories

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"gorm.io/gorm"
)

type Runs struct {
	db *gorm.DB
}

func NewRunsRepository(db *gorm.DB) *Runs {
	return &Runs{db: db}
}

func (r *Runs) Add(ctx context.Context, run models.IngestionRun) error {
	return r.db.WithContext(ctx).Create(&run).Error
}

func (r *Runs) Recent(ctx context.Context, limit int) ([]models.IngestionRun, error) {
	var runs []models.IngestionRun
	err := r.db.WithContext(ctx).
		Order("completed_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
