package models

import (
	"time"
)

// SnapshotSlot persists one serialized session snapshot (cart state or flow
// position) keyed by slot name and booking session.
type SnapshotSlot struct {
	Slot      string    `gorm:"column:slot;primaryKey"`
	SessionID string    `gorm:"column:session_id;primaryKey"`
	Payload   string    `gorm:"column:payload;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SnapshotSlot) TableName() string { return "snapshot_slots" }
