package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

const listingCacheKey = "listing"

// Service is the engine's read surface over the catalog. Reads are
// cache-first: redis, then the commerce backend, then the database mirror
// when the backend is down. A failed backend fetch is never retried here.
type Service interface {
	Listing(ctx context.Context) (*Listing, error)
	AddOns(ctx context.Context) ([]types.AddOn, error)
	Tours(ctx context.Context) ([]types.Tour, error)
	TourByHandle(ctx context.Context, handle string) (*types.Tour, error)
	Refresh(ctx context.Context) error
}

type lister interface {
	FetchListing(ctx context.Context) (*Listing, error)
}

// ResponseCache is the slice of the redis client the service uses.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(parts ...string) string
}

// ServiceParams groups catalog service dependencies. Cache and Repo are
// optional; without them the service goes straight to the backend.
type ServiceParams struct {
	Client   lister
	Repo     *Repository
	Cache    ResponseCache
	Logger   *logger.Logger
	CacheTTL time.Duration
}

type service struct {
	client   lister
	repo     *Repository
	cache    ResponseCache
	logg     *logger.Logger
	cacheTTL time.Duration
}

// NewService builds the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		client:   params.Client,
		repo:     params.Repo,
		cache:    params.Cache,
		logg:     params.Logger,
		cacheTTL: ttl,
	}, nil
}

func (s *service) Listing(ctx context.Context) (*Listing, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	listing, err := s.client.FetchListing(ctx)
	if err != nil {
		// Serve the database mirror through a backend outage; the caller
		// only sees the error when the mirror is empty too.
		if mirrored := s.fromMirror(ctx); mirrored != nil {
			s.logg.Error(ctx, "catalog fetch failed, serving database mirror", err)
			return mirrored, nil
		}
		return nil, err
	}

	s.storeCache(ctx, listing)
	s.storeMirror(ctx, listing)
	return listing, nil
}

func (s *service) AddOns(ctx context.Context) ([]types.AddOn, error) {
	listing, err := s.Listing(ctx)
	if err != nil {
		return nil, err
	}
	return listing.AddOns, nil
}

func (s *service) Tours(ctx context.Context) ([]types.Tour, error) {
	listing, err := s.Listing(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Tours, nil
}

func (s *service) TourByHandle(ctx context.Context, handle string) (*types.Tour, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tour handle is required")
	}
	listing, err := s.Listing(ctx)
	if err != nil {
		return nil, err
	}
	for _, tour := range listing.Tours {
		if tour.Handle == handle {
			found := tour
			return &found, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tour not found")
}

// Refresh forces a backend fetch and rewrites both cache layers.
func (s *service) Refresh(ctx context.Context) error {
	listing, err := s.client.FetchListing(ctx)
	if err != nil {
		return err
	}
	s.storeCache(ctx, listing)
	s.storeMirror(ctx, listing)
	return nil
}

func (s *service) fromCache(ctx context.Context) *Listing {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, s.cache.CatalogKey(listingCacheKey))
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		s.logg.Error(ctx, "reading catalog cache", err)
		return nil
	}
	var listing Listing
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		s.logg.Error(ctx, "corrupt catalog cache entry", err)
		return nil
	}
	return &listing
}

func (s *service) storeCache(ctx context.Context, listing *Listing) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(listing)
	if err != nil {
		s.logg.Error(ctx, "encoding catalog cache entry", err)
		return
	}
	if err := s.cache.Set(ctx, s.cache.CatalogKey(listingCacheKey), string(raw), s.cacheTTL); err != nil {
		s.logg.Error(ctx, "writing catalog cache", err)
	}
}

func (s *service) fromMirror(ctx context.Context) *Listing {
	if s.repo == nil {
		return nil
	}
	listing, err := s.repo.Listing(ctx)
	if err != nil {
		s.logg.Error(ctx, "reading catalog mirror", err)
		return nil
	}
	if len(listing.Tours) == 0 && len(listing.AddOns) == 0 {
		return nil
	}
	return listing
}

func (s *service) storeMirror(ctx context.Context, listing *Listing) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		s.logg.Error(ctx, "writing catalog mirror", err)
	}
}
