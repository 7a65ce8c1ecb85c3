package cron

import (
	"context"
	"fmt"

	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
)

type catalogRefresher interface {
	Refresh(ctx context.Context) error
}

type CatalogRefreshJobParams struct {
	Logger  *logger.Logger
	Catalog catalogRefresher
}

// NewCatalogRefreshJob builds the job that re-pulls the product catalog from
// the commerce backend, rewriting both the cache and the database mirror.
func NewCatalogRefreshJob(params CatalogRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &catalogRefreshJob{
		logg:    params.Logger,
		catalog: params.Catalog,
	}, nil
}

type catalogRefreshJob struct {
	logg    *logger.Logger
	catalog catalogRefresher
}

func (j *catalogRefreshJob) Name() string { return "catalog-refresh" }

func (j *catalogRefreshJob) Run(ctx context.Context) error {
	if err := j.catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("catalog refresh: %w", err)
	}
	j.logg.Info(ctx, "catalog refresh complete")
	return nil
}
