package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
)

// Tour caches tour products pulled from the commerce backend. The engine
// treats the backend as the source of truth; rows here exist so pricing and
// filtering keep working through backend outages.
type Tour struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RemoteID        string          `gorm:"column:remote_id;not null;uniqueIndex"`
	Handle          string          `gorm:"column:handle;not null;uniqueIndex"`
	VariantID       string          `gorm:"column:variant_id;not null;default:''"`
	Title           string          `gorm:"column:title;not null"`
	DurationDays    int             `gorm:"column:duration_days;not null;default:1"`
	MaxParticipants int             `gorm:"column:max_participants;not null;default:0"`
	BasePriceCents  int64           `gorm:"column:base_price_cents;not null;default:0"`
	CurrencyCode    string          `gorm:"column:currency_code;not null;default:'AUD'"`
	Lodging         enums.Lodging   `gorm:"column:lodging;not null;default:'none'"`
	DriveMode       enums.DriveMode `gorm:"column:drive_mode;not null;default:'self_drive'"`
	SyncedAt        time.Time       `gorm:"column:synced_at;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tour) TableName() string { return "tours" }
