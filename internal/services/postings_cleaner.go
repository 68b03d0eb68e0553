package services

import (
	"context"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type PostingCleanupRepository interface {
	RemoveStale(ctx context.Context, indexedBefore time.Time) (int64, error)
}

// PostingsCleaner deletes postings that no ingestion cycle has refreshed for a while.
type PostingsCleaner struct {
	postings      PostingCleanupRepository
	cron          *cron.Cron
	retentionDays int
}

func NewPostingsCleaner(postings PostingCleanupRepository, retentionDays int) (*PostingsCleaner, error) {

	if retentionDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	pc := &PostingsCleaner{
		postings:      postings,
		cron:          cron.New(),
		retentionDays: retentionDays,
	}

	_, err := pc.cron.AddFunc("0 3 * * *", func() { pc.Clean(context.Background()) })
	if err != nil {
		return nil, err
	}

	pc.cron.Start()
	log.Infof("postings cleaner started, retention in days: %d", pc.retentionDays)
	return pc, nil
}

func (pc *PostingsCleaner) Stop() {
	<-pc.cron.Stop().Done()
}

func (pc *PostingsCleaner) Clean(ctx context.Context) {
	indexedBefore := time.Now().Add(-time.Duration(pc.retentionDays) * 24 * time.Hour)
	rowsAffected, err := pc.postings.RemoveStale(ctx, indexedBefore)
	if err != nil {
		log.Errorf("failed to remove stale postings: %v", err)
	} else {
		log.Infof("stale postings removed at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
