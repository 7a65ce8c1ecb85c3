package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
)

// AddOnRecord caches add-on products and the metadata the engine filters and
// prices with. ApplicableTours stores the raw handle list from the backend,
// including the "*" wildcard.
type AddOnRecord struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	RemoteID        string            `gorm:"column:remote_id;not null;uniqueIndex"`
	Handle          string            `gorm:"column:handle;not null;default:''"`
	VariantID       string            `gorm:"column:variant_id;not null"`
	Title           string            `gorm:"column:title;not null"`
	Description     string            `gorm:"column:description;not null;default:''"`
	Category        string            `gorm:"column:category;not null;index"`
	PricingUnit     enums.PricingUnit `gorm:"column:pricing_unit;not null;default:'per_booking'"`
	BasePriceCents  int64             `gorm:"column:base_price_cents;not null"`
	CurrencyCode    string            `gorm:"column:currency_code;not null;default:'AUD'"`
	Available       bool              `gorm:"column:available;not null;default:true"`
	ApplicableTours []string          `gorm:"column:applicable_tours;type:jsonb;serializer:json"`
	Tags            []string          `gorm:"column:tags;type:jsonb;serializer:json"`
	SyncedAt        time.Time         `gorm:"column:synced_at;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (AddOnRecord) TableName() string { return "addon_records" }
