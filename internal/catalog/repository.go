package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunshinecoast4wd/booking-engine/internal/repo"
	"github.com/sunshinecoast4wd/booking-engine/pkg/db"
	"github.com/sunshinecoast4wd/booking-engine/pkg/db/models"
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// Repository mirrors the catalog into the local database so the engine keeps
// filtering and pricing through backend outages.
type Repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository wraps a gorm connection.
func NewRepository(conn *gorm.DB) (*Repository, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db connection is required")
	}
	return &Repository{Base: repo.NewBase(conn), now: time.Now}, nil
}

// SaveListing upserts the fetched listing, keyed by remote product id.
func (r *Repository) SaveListing(ctx context.Context, listing *Listing) error {
	if listing == nil {
		return nil
	}
	syncedAt := r.now()

	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tour := range listing.Tours {
			row := models.Tour{
				ID:              uuid.New(),
				RemoteID:        tour.ID,
				Handle:          tour.Handle,
				VariantID:       tour.VariantID,
				Title:           tour.Title,
				DurationDays:    tour.DurationDays,
				MaxParticipants: tour.MaxParticipants,
				BasePriceCents:  tour.BasePriceMinor,
				CurrencyCode:    tour.CurrencyCode,
				Lodging:         normalizeLodging(tour.Lodging),
				DriveMode:       normalizeDriveMode(tour.DriveMode),
				SyncedAt:        syncedAt,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "remote_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"handle", "variant_id", "title", "duration_days", "max_participants",
					"base_price_cents", "currency_code", "lodging", "drive_mode", "synced_at", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				if db.IsUniqueViolation(err, "tours_handle_key") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tour handle already mirrored under another remote id")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting tour")
			}
		}

		for _, addon := range listing.AddOns {
			row := addOnRow(addon, syncedAt)
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "remote_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"handle", "variant_id", "title", "description", "category", "pricing_unit",
					"base_price_cents", "currency_code", "available", "applicable_tours", "tags",
					"synced_at", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upserting add-on")
			}
		}
		return nil
	})
}

// Listing reads the mirrored catalog back out in catalog order.
func (r *Repository) Listing(ctx context.Context) (*Listing, error) {
	var tourRows []models.Tour
	if err := r.DB(ctx).Order("handle asc").Find(&tourRows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing mirrored tours")
	}
	var addonRows []models.AddOnRecord
	if err := r.DB(ctx).Order("handle asc").Find(&addonRows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing mirrored add-ons")
	}

	listing := &Listing{}
	for _, row := range tourRows {
		listing.Tours = append(listing.Tours, tourFromRow(row))
	}
	for _, row := range addonRows {
		listing.AddOns = append(listing.AddOns, addOnFromRow(row))
	}
	return listing, nil
}

// FindTourByHandle reads one mirrored tour.
func (r *Repository) FindTourByHandle(ctx context.Context, handle string) (*types.Tour, error) {
	var row models.Tour
	err := r.DB(ctx).Where("handle = ?", handle).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tour not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding tour")
	}
	tour := tourFromRow(row)
	return &tour, nil
}

func addOnRow(addon types.AddOn, syncedAt time.Time) models.AddOnRecord {
	row := models.AddOnRecord{
		ID:             uuid.New(),
		RemoteID:       addon.ID,
		Handle:         addon.Handle,
		VariantID:      addon.VariantID,
		Title:          addon.Title,
		Description:    addon.Description,
		Category:       addon.Category,
		PricingUnit:    addon.PricingUnit.Normalize(),
		BasePriceCents: addon.BasePriceMinor,
		CurrencyCode:   addon.CurrencyCode,
		Available:      addon.Available,
		SyncedAt:       syncedAt,
	}
	if addon.Metadata != nil {
		row.ApplicableTours = addon.Metadata.ApplicableTours
		row.Tags = addon.Metadata.Tags
	}
	return row
}

func tourFromRow(row models.Tour) types.Tour {
	return types.Tour{
		ID:              row.RemoteID,
		Handle:          row.Handle,
		VariantID:       row.VariantID,
		Title:           row.Title,
		BasePriceMinor:  row.BasePriceCents,
		CurrencyCode:    row.CurrencyCode,
		DurationDays:    row.DurationDays,
		MaxParticipants: row.MaxParticipants,
		Lodging:         row.Lodging,
		DriveMode:       row.DriveMode,
	}
}

func addOnFromRow(row models.AddOnRecord) types.AddOn {
	return types.AddOn{
		ID:             row.RemoteID,
		Handle:         row.Handle,
		VariantID:      row.VariantID,
		Title:          row.Title,
		Description:    row.Description,
		Category:       row.Category,
		PricingUnit:    row.PricingUnit,
		BasePriceMinor: row.BasePriceCents,
		CurrencyCode:   row.CurrencyCode,
		Available:      row.Available,
		Metadata: &types.AddOnMetadata{
			ApplicableTours: row.ApplicableTours,
			Tags:            row.Tags,
		},
	}
}

func normalizeLodging(lodging enums.Lodging) enums.Lodging {
	if lodging.IsValid() {
		return lodging
	}
	return enums.LodgingNone
}

func normalizeDriveMode(mode enums.DriveMode) enums.DriveMode {
	if mode.IsValid() {
		return mode
	}
	return enums.DriveModeSelfDrive
}
