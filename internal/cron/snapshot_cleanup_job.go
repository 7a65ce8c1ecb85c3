package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sunshinecoast4wd/booking-engine/pkg/db/models"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
)

type SnapshotCleanupJobParams struct {
	Logger *logger.Logger
	DB     *gorm.DB
}

// NewSnapshotCleanupJob builds the job that purges expired session snapshots
// from the database backend. Redis-backed snapshots expire on their own.
func NewSnapshotCleanupJob(params SnapshotCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	return &snapshotCleanupJob{
		logg: params.Logger,
		db:   params.DB,
		now:  time.Now,
	}, nil
}

type snapshotCleanupJob struct {
	logg *logger.Logger
	db   *gorm.DB
	now  func() time.Time
}

func (j *snapshotCleanupJob) Name() string { return "snapshot-cleanup" }

func (j *snapshotCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	result := j.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", cutoff).
		Delete(&models.SnapshotSlot{})
	if result.Error != nil {
		return fmt.Errorf("snapshot cleanup: %w", result.Error)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": result.RowsAffected,
	})
	j.logg.Info(logCtx, "snapshot cleanup complete")
	return nil
}
