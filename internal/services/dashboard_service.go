// Package services holds the application services sitting between the HTTP
// transport and the data layers: dashboard statistics, authentication and
// health checks.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "ctedash/internal/errors"
	"ctedash/internal/feeds"
	"ctedash/internal/infrastructure"
	"ctedash/internal/normalize"
	"ctedash/internal/stats"
	"ctedash/pkg/contracts/domain"
)

// DashboardService owns the in-memory data snapshot and answers every
// statistics query by recomputing from it. Nothing is persisted: a refresh
// swaps the snapshot atomically and readers never block.
type DashboardService struct {
	loader       *feeds.Loader
	fallbackDays domain.FixedDays
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *infrastructure.AppMetrics

	snapshot atomic.Pointer[domain.AppData]
}

// NewDashboardService creates a dashboard service over the feed loader.
// fallbackDays fills in the projection day counts when the calendar feed
// does not provide them.
func NewDashboardService(loader *feeds.Loader, fallbackDays domain.FixedDays, logger *slog.Logger, metrics *infrastructure.AppMetrics) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:       loader,
		fallbackDays: fallbackDays,
		logger:       logger.With(slog.String("component", "dashboard_service")),
		tracer:       otel.Tracer("ctedash.dashboard"),
		metrics:      metrics,
	}
}

// Refresh fetches all data feeds and replaces the snapshot. On failure the
// previous snapshot stays in place, so readers keep seeing consistent data.
func (s *DashboardService) Refresh(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "dashboard.refresh")
	defer span.End()

	start := time.Now()
	data, err := s.loader.Load(ctx)
	infrastructure.RecordFeedLoad(ctx, s.metrics, time.Since(start), len(data.Ctes), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "feed refresh failed", slog.String("error", err.Error()))
		return fmt.Errorf("refresh: %w", err)
	}

	if data.FixedDays.Total == 0 {
		data.FixedDays.Total = s.fallbackDays.Total
	}
	if data.FixedDays.Elapsed == 0 {
		data.FixedDays.Elapsed = s.fallbackDays.Elapsed
	}

	s.snapshot.Store(&data)

	span.SetAttributes(
		attribute.Int("ctes", len(data.Ctes)),
		attribute.Int("targets", len(data.Targets)),
	)
	s.logger.InfoContext(ctx, "snapshot refreshed",
		slog.Int("ctes", len(data.Ctes)),
		slog.Int("targets", len(data.Targets)),
		slog.Time("last_update", data.LastUpdate))
	return nil
}

// Snapshot returns the current data snapshot, or ErrDataNotLoaded before
// the first successful refresh.
func (s *DashboardService) Snapshot() (domain.AppData, error) {
	p := s.snapshot.Load()
	if p == nil {
		return domain.AppData{}, apierrors.ErrDataNotLoaded
	}
	return *p, nil
}

// LoadedAt reports when the current snapshot was built; zero before the
// first refresh.
func (s *DashboardService) LoadedAt() time.Time {
	if p := s.snapshot.Load(); p != nil {
		return p.LoadedAt
	}
	return time.Time{}
}

// Dashboard computes the summary and per-unit statistics over the snapshot.
func (s *DashboardService) Dashboard(ctx context.Context, opts stats.Options) (stats.Result, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.compute")
	defer span.End()

	data, err := s.Snapshot()
	if err != nil {
		return stats.Result{}, err
	}

	start := time.Now()
	result := stats.Compute(data, opts)
	if s.metrics != nil {
		s.metrics.ComputeRuns.Add(ctx, 1)
		s.metrics.ComputeDuration.Record(ctx, time.Since(start).Seconds())
	}

	span.SetAttributes(
		attribute.Int("units", len(result.Units)),
		attribute.Int("documents", result.Summary.TotalDocuments),
	)
	return result, nil
}

// Unit computes a single branch's statistics with drill-down document
// lists. Unknown branches return ErrUnitNotFound.
func (s *DashboardService) Unit(ctx context.Context, unit string, dateRange domain.DateRange) (stats.UnitStats, error) {
	result, err := s.Dashboard(ctx, stats.Options{
		Range:       dateRange,
		Unit:        unit,
		IncludeDocs: true,
	})
	if err != nil {
		return stats.UnitStats{}, err
	}
	if len(result.Units) == 0 {
		return stats.UnitStats{}, apierrors.ErrUnitNotFound
	}
	return result.Units[0], nil
}

// Series computes the daily revenue trend over the snapshot.
func (s *DashboardService) Series(ctx context.Context, opts stats.SeriesOptions) (stats.Series, error) {
	data, err := s.Snapshot()
	if err != nil {
		return stats.Series{}, err
	}
	return stats.DailySeries(data.Ctes, opts), nil
}

// Rankings computes the manager-view ranking tables over the snapshot.
func (s *DashboardService) Rankings(ctx context.Context, dateRange domain.DateRange) (stats.Rankings, error) {
	result, err := s.Dashboard(ctx, stats.Options{Range: dateRange})
	if err != nil {
		return stats.Rankings{}, err
	}
	return stats.BuildRankings(result.Units), nil
}

// Documents returns the snapshot's documents restricted to the filter, for
// the export endpoints. The unit filter matches either side of the
// document.
func (s *DashboardService) Documents(ctx context.Context, dateRange domain.DateRange, unit string) ([]domain.Cte, error) {
	data, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	unit = normalize.UnitName(unit)
	out := make([]domain.Cte, 0, len(data.Ctes))
	for i := range data.Ctes {
		c := data.Ctes[i]
		if !dateRange.IsZero() && !dateRange.Contains(c.IssueDate) {
			continue
		}
		if unit != "" && c.CollectionUnit != unit && c.DeliveryUnit != unit {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
