// Package catalog pulls tour and add-on products from the commerce backend
// and serves them to the engine through a cache-first service. One product
// listing carries both: add-ons are the products whose handle starts with
// "addon-", everything else is a tour.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sunshinecoast4wd/booking-engine/pkg/config"
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

const (
	publishableKeyHeader = "x-publishable-api-key"
	addOnHandlePrefix    = "addon-"
)

var durationHandlePattern = regexp.MustCompile(`^(\d+)d-`)

type calculatedPriceDTO struct {
	CalculatedAmount int64  `json:"calculated_amount"`
	CurrencyCode     string `json:"currency_code"`
}

type variantDTO struct {
	ID              string              `json:"id" validate:"required"`
	CalculatedPrice *calculatedPriceDTO `json:"calculated_price"`
}

type productDTO struct {
	ID          string         `json:"id" validate:"required"`
	Handle      string         `json:"handle" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Variants    []variantDTO   `json:"variants" validate:"required,min=1,dive"`
}

type productListDTO struct {
	Products []productDTO `json:"products"`
}

// Listing is one catalog fetch split into tours and add-ons.
type Listing struct {
	Tours  []types.Tour
	AddOns []types.AddOn
}

// Client fetches the product listing from the commerce store API. Responses
// are validated gracefully: malformed products are logged and skipped, never
// failing the whole listing.
type Client struct {
	baseURL        string
	publishableKey string
	regionID       string
	httpClient     *http.Client
	logger         *logger.Logger
	validate       *validator.Validate
}

// NewClient validates the catalog configuration and builds the client.
func NewClient(cfg config.CatalogConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog base url is required")
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})

	return &Client{
		baseURL:        baseURL,
		publishableKey: strings.TrimSpace(cfg.PublishableKey),
		regionID:       strings.TrimSpace(cfg.RegionID),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logg,
		validate:       v,
	}, nil
}

// FetchListing pulls the full product listing and maps it into tours and
// add-ons. Fetch failures surface to the caller; the engine never retries.
func (c *Client) FetchListing(ctx context.Context) (*Listing, error) {
	endpoint := c.baseURL + "/store/products"
	if c.regionID != "" {
		endpoint += "?region_id=" + url.QueryEscape(c.regionID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building catalog request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.publishableKey != "" {
		req.Header.Set(publishableKeyHeader, c.publishableKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling catalog api")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pkgerrors.New(
			pkgerrors.CodeDependency,
			fmt.Sprintf("catalog api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		)
	}

	var listing productListDTO
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding catalog response")
	}

	out := &Listing{}
	for _, product := range listing.Products {
		if err := c.validate.Struct(product); err != nil {
			c.logger.Error(ctx, "skipping malformed catalog product", err)
			continue
		}
		if strings.HasPrefix(product.Handle, addOnHandlePrefix) {
			addon, err := addOnFromProduct(product)
			if err != nil {
				c.logger.Error(ctx, "skipping unusable add-on product", err)
				continue
			}
			out.AddOns = append(out.AddOns, addon)
			continue
		}
		out.Tours = append(out.Tours, tourFromProduct(product))
	}
	return out, nil
}

func tourFromProduct(product productDTO) types.Tour {
	variant := product.Variants[0]
	tour := types.Tour{
		ID:              product.ID,
		Handle:          product.Handle,
		VariantID:       variant.ID,
		Title:           product.Title,
		DurationDays:    durationDays(product),
		MaxParticipants: metaInt(product.Metadata, "max_participants"),
	}
	if variant.CalculatedPrice != nil {
		tour.BasePriceMinor = variant.CalculatedPrice.CalculatedAmount
		tour.CurrencyCode = strings.ToUpper(variant.CalculatedPrice.CurrencyCode)
	}
	if lodging, err := enums.ParseLodging(metaString(product.Metadata, "lodging")); err == nil {
		tour.Lodging = lodging
	}
	if mode, err := enums.ParseDriveMode(metaString(product.Metadata, "drive_mode")); err == nil {
		tour.DriveMode = mode
	}
	return tour
}

func addOnFromProduct(product productDTO) (types.AddOn, error) {
	variant := product.Variants[0]
	if variant.CalculatedPrice == nil || variant.CalculatedPrice.CalculatedAmount <= 0 {
		return types.AddOn{}, pkgerrors.New(
			pkgerrors.CodeValidation,
			fmt.Sprintf("add-on %s has no calculated price", product.Handle),
		)
	}

	unit := enums.PricingUnitPerBooking
	if parsed, err := enums.ParsePricingUnit(metaString(product.Metadata, "unit")); err == nil {
		unit = parsed
	}

	category := metaString(product.Metadata, "category")
	if category == "" {
		category = deriveCategory(product.Handle)
	}

	return types.AddOn{
		ID:             product.ID,
		Handle:         product.Handle,
		VariantID:      variant.ID,
		Title:          product.Title,
		Description:    product.Description,
		Category:       category,
		PricingUnit:    unit,
		BasePriceMinor: variant.CalculatedPrice.CalculatedAmount,
		CurrencyCode:   strings.ToUpper(variant.CalculatedPrice.CurrencyCode),
		Available:      true,
		Metadata: &types.AddOnMetadata{
			ApplicableTours: metaStrings(product.Metadata, "applicable_tours"),
			Tags:            metaStrings(product.Metadata, "tags"),
			RecommendedFor:  metaStrings(product.Metadata, "recommended_for"),
			QuantityAllowed: metaBool(product.Metadata, "quantity_allowed"),
		},
	}, nil
}

// durationDays reads metadata first and falls back to the "<n>d-" handle
// prefix convention, defaulting to a single day.
func durationDays(product productDTO) int {
	if days := metaInt(product.Metadata, "duration_days"); days > 0 {
		return days
	}
	if match := durationHandlePattern.FindStringSubmatch(product.Handle); match != nil {
		if days, err := strconv.Atoi(match[1]); err == nil && days > 0 {
			return days
		}
	}
	return 1
}

// deriveCategory guesses a wizard category from handle keywords when the
// backend never set one.
func deriveCategory(handle string) string {
	switch {
	case containsAny(handle, "bbq", "meal", "food", "picnic", "breakfast"):
		return "Food & Beverage"
	case containsAny(handle, "photo", "camera", "gopro"):
		return "Photography"
	case containsAny(handle, "glamping", "camping", "tent", "bedding"):
		return "Accommodation"
	case containsAny(handle, "kayak", "fishing", "surf", "sandboard"):
		return "Activities"
	case containsAny(handle, "internet", "wifi", "starlink"):
		return "Connectivity"
	default:
		return "Other"
	}
}

func containsAny(handle string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(handle, keyword) {
			return true
		}
	}
	return false
}

func metaString(metadata map[string]any, key string) string {
	if value, ok := metadata[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func metaInt(metadata map[string]any, key string) int {
	switch value := metadata[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return 0
}

func metaBool(metadata map[string]any, key string) bool {
	switch value := metadata[key].(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(strings.TrimSpace(value), "true")
	}
	return false
}

// metaStrings accepts both JSON arrays and comma-separated strings; product
// metadata in the backend admin is hand-entered and both shapes occur.
func metaStrings(metadata map[string]any, key string) []string {
	switch value := metadata[key].(type) {
	case []any:
		out := make([]string, 0, len(value))
		for _, entry := range value {
			if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case []string:
		return value
	case string:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return nil
}
