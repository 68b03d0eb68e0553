package repositories

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"strings"
	"time"
)

// columns overwritten when a posting with the same (source_name, source_job_id) is written again
var postingUpdateColumns = []string{
	"posting_id", "source_url", "title", "company_name", "location_text", "is_remote",
	"employment_type", "description", "category", "tags", "salary_min", "salary_max",
	"posted_at", "indexed_at",
}

type PostingFilter struct {
	// TitleKeywords are matched case-insensitively as literal text, any one of them is enough.
	// Whitespace inside a keyword matches any run of characters, so "go engineer" matches "Go Backend Engineer".
	TitleKeywords []string
	RemoteOnly    bool
	Source        string
	Limit         int
	Offset        int
}

type Postings struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostingsRepository(db *gorm.DB) *Postings {
	return &Postings{db: db, now: time.Now}
}

func (p *Postings) Upsert(ctx context.Context, posting models.JobPosting) error {
	posting.ID = 0
	posting.PostingID = models.NewPostingID(posting.SourceName, posting.SourceJobID)
	posting.IndexedAt = p.now().UTC()

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_name"}, {Name: "source_job_id"}},
			DoUpdates: clause.AssignmentColumns(postingUpdateColumns),
		}).
		Create(&posting).Error
}

func (p *Postings) List(ctx context.Context, filter PostingFilter) ([]models.JobPosting, error) {
	query := p.db.WithContext(ctx).Model(&models.JobPosting{})

	if len(filter.TitleKeywords) > 0 {
		conditions := make([]string, 0, len(filter.TitleKeywords))
		args := make([]any, 0, len(filter.TitleKeywords))
		for _, keyword := range filter.TitleKeywords {
			pattern := titlePattern(keyword)
			if pattern == "" {
				continue
			}
			conditions = append(conditions, `LOWER(title) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		if len(conditions) > 0 {
			query = query.Where(strings.Join(conditions, " OR "), args...)
		}
	}

	if filter.RemoteOnly {
		query = query.Where("is_remote = ?", true)
	}

	if filter.Source != "" {
		query = query.Where("source_name = ?", filter.Source)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var postings []models.JobPosting
	err := query.Order("indexed_at DESC").Order("id DESC").Find(&postings).Error
	return postings, err
}

func (p *Postings) Get(ctx context.Context, postingID string) (*models.JobPosting, error) {
	var posting models.JobPosting
	err := p.db.WithContext(ctx).Where("posting_id = ?", postingID).First(&posting).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &posting, nil
}

// GetMany resolves postings in one query. Unknown ids are absent from the result.
func (p *Postings) GetMany(ctx context.Context, postingIDs []string) (map[string]models.JobPosting, error) {
	result := make(map[string]models.JobPosting, len(postingIDs))
	if len(postingIDs) == 0 {
		return result, nil
	}

	var postings []models.JobPosting
	if err := p.db.WithContext(ctx).Where("posting_id IN ?", postingIDs).Find(&postings).Error; err != nil {
		return nil, err
	}

	for _, posting := range postings {
		result[posting.PostingID] = posting
	}
	return result, nil
}

func (p *Postings) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.JobPosting{}).Count(&count).Error
	return count, err
}

func (p *Postings) CountBySource(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		SourceName string
		Total      int64
	}
	err := p.db.WithContext(ctx).Model(&models.JobPosting{}).
		Select("source_name, COUNT(*) AS total").
		Group("source_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.SourceName] = row.Total
	}
	return result, nil
}

// RemoveStale deletes postings that were not re-indexed since the given time.
func (p *Postings) RemoveStale(ctx context.Context, indexedBefore time.Time) (int64, error) {
	res := p.db.WithContext(ctx).Delete(&models.JobPosting{}, "indexed_at < ?", indexedBefore.UTC())
	return res.RowsAffected, res.Error
}

func titlePattern(keyword string) string {
	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 0 {
		return ""
	}

	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	for i, word := range words {
		words[i] = replacer.Replace(word)
	}
	return "%" + strings.Join(words, "%") + "%"
}
