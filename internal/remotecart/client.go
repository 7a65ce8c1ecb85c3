// Package remotecart is the storefront-facing cart API client. The commerce
// backend cart is a mirror of local state, so every call here is best-effort
// from the engine's point of view.
package remotecart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sunshinecoast4wd/booking-engine/pkg/config"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
)

const publishableKeyHeader = "x-publishable-api-key"

// LineItem is one line of the remote cart.
type LineItem struct {
	ID        string         `json:"id"`
	VariantID string         `json:"variant_id"`
	Quantity  int            `json:"quantity"`
	Title     string         `json:"title,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Cart is the remote cart resource, trimmed to the fields the engine mirrors.
type Cart struct {
	ID       string         `json:"id"`
	RegionID string         `json:"region_id,omitempty"`
	Items    []LineItem     `json:"items"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type cartEnvelope struct {
	Cart Cart `json:"cart"`
}

// Client talks to the commerce backend store cart API with centralized auth
// headers and error mapping.
type Client struct {
	baseURL        string
	publishableKey string
	regionID       string
	httpClient     *http.Client
	logger         *logger.Logger
}

// NewClient validates the remote cart configuration and builds the client.
func NewClient(cfg config.RemoteCartConfig, regionID string, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote cart base url is required")
	}
	return &Client{
		baseURL:        baseURL,
		publishableKey: strings.TrimSpace(cfg.PublishableKey),
		regionID:       strings.TrimSpace(regionID),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logg,
	}, nil
}

// CreateCart provisions a fresh remote cart in the configured region.
func (c *Client) CreateCart(ctx context.Context) (*Cart, error) {
	body := map[string]any{}
	if c.regionID != "" {
		body["region_id"] = c.regionID
	}
	return c.doCart(ctx, http.MethodPost, "/store/carts", body)
}

// GetCart fetches the remote cart. A missing cart maps to CodeNotFound so
// callers can drop the stale id and provision a fresh one.
func (c *Client) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	return c.doCart(ctx, http.MethodGet, "/store/carts/"+cartID, nil)
}

// AddLineItem appends a variant to the remote cart.
func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int, metadata map[string]any) (*Cart, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if variantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	body := map[string]any{
		"variant_id": variantID,
		"quantity":   quantity,
	}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	return c.doCart(ctx, http.MethodPost, "/store/carts/"+cartID+"/line-items", body)
}

// UpdateLineItem changes the quantity of an existing line.
func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*Cart, error) {
	if cartID == "" || lineItemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id and line item id are required")
	}
	body := map[string]any{"quantity": quantity}
	return c.doCart(ctx, http.MethodPost, "/store/carts/"+cartID+"/line-items/"+lineItemID, body)
}

// RemoveLineItem deletes a line from the remote cart.
func (c *Client) RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*Cart, error) {
	if cartID == "" || lineItemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id and line item id are required")
	}
	return c.doCart(ctx, http.MethodDelete, "/store/carts/"+cartID+"/line-items/"+lineItemID, nil)
}

// UpdateCartMetadata replaces the cart-level metadata block that carries the
// tour booking context.
func (c *Client) UpdateCartMetadata(ctx context.Context, cartID string, metadata map[string]any) (*Cart, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	return c.doCart(ctx, http.MethodPost, "/store/carts/"+cartID, map[string]any{"metadata": metadata})
}

func (c *Client) doCart(ctx context.Context, method, path string, body any) (*Cart, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building cart request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.publishableKey != "" {
		req.Header.Set(publishableKeyHeader, c.publishableKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling cart api")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "remote cart not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pkgerrors.New(
			pkgerrors.CodeDependency,
			fmt.Sprintf("cart api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		)
	}

	var envelope cartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cart response")
	}
	if envelope.Cart.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart response missing cart id")
	}
	return &envelope.Cart, nil
}

// IsNotFound reports whether the error is the remote cart missing.
func IsNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}
