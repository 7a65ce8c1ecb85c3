package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunshinecoast4wd/booking-engine/pkg/db/models"
)

// GormSnapshots stores session slots in the relational database. Used where
// Redis is not deployed; rows past their expiry are treated as absent.
type GormSnapshots struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewGormSnapshots wraps the shared gorm connection as a snapshot backend.
func NewGormSnapshots(db *gorm.DB, ttl time.Duration) (*GormSnapshots, error) {
	if db == nil {
		return nil, errors.New("db connection is required")
	}
	return &GormSnapshots{db: db, ttl: ttl, now: time.Now}, nil
}

func (g *GormSnapshots) Load(ctx context.Context, slot, sessionID string) (string, bool, error) {
	var row models.SnapshotSlot
	err := g.db.WithContext(ctx).
		Where("slot = ? AND session_id = ?", slot, sessionID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if !row.ExpiresAt.IsZero() && row.ExpiresAt.Before(g.now()) {
		return "", false, nil
	}
	return row.Payload, true, nil
}

func (g *GormSnapshots) Save(ctx context.Context, slot, sessionID, payload string) error {
	row := models.SnapshotSlot{
		Slot:      slot,
		SessionID: sessionID,
		Payload:   payload,
	}
	if g.ttl > 0 {
		row.ExpiresAt = g.now().Add(g.ttl)
	}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot"}, {Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (g *GormSnapshots) Delete(ctx context.Context, slot, sessionID string) error {
	return g.db.WithContext(ctx).
		Where("slot = ? AND session_id = ?", slot, sessionID).
		Delete(&models.SnapshotSlot{}).Error
}
