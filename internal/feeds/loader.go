package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ctedash/pkg/contracts/domain"
)

// URLs names the published CSV exports the loader pulls from.
type URLs struct {
	Ctes     string
	Targets  string
	Calendar string
	Users    string
}

// Loader assembles one AppData snapshot per Load call: the three data feeds
// are fetched concurrently and a failure of any one fails the whole load, so
// a snapshot is never built from mismatched halves.
type Loader struct {
	client *Client
	urls   URLs
	logger *slog.Logger
}

// NewLoader creates a loader over the given client and feed URLs.
func NewLoader(client *Client, urls URLs, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{client: client, urls: urls, logger: logger}
}

// Load fetches and parses the shipment, target and calendar feeds into one
// consistent snapshot. LastUpdate is derived from the data itself (latest
// issue date), never from the wall clock, so day figures stay correct when
// the feed lags.
func (l *Loader) Load(ctx context.Context) (domain.AppData, error) {
	start := time.Now()

	var (
		ctes    []domain.Cte
		targets []domain.UnitTarget
		cal     Calendar
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := l.client.Fetch(gctx, l.urls.Ctes)
		if err != nil {
			return fmt.Errorf("shipments feed: %w", err)
		}
		ctes, err = ParseCtes(payload)
		return err
	})
	g.Go(func() error {
		payload, err := l.client.Fetch(gctx, l.urls.Targets)
		if err != nil {
			return fmt.Errorf("targets feed: %w", err)
		}
		targets, err = ParseTargets(payload)
		return err
	})
	g.Go(func() error {
		payload, err := l.client.Fetch(gctx, l.urls.Calendar)
		if err != nil {
			return fmt.Errorf("calendar feed: %w", err)
		}
		cal, err = ParseCalendar(payload)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AppData{}, err
	}

	data := domain.AppData{
		Ctes:       ctes,
		Targets:    targets,
		RefDate:    cal.RefDate,
		Holidays:   cal.Holidays,
		FixedDays:  cal.FixedDays,
		LastUpdate: latestIssueDate(ctes),
		LoadedAt:   time.Now(),
	}

	l.logger.Info("feeds loaded",
		slog.Int("ctes", len(data.Ctes)),
		slog.Int("targets", len(data.Targets)),
		slog.Int("holidays", len(data.Holidays)),
		slog.Duration("elapsed", time.Since(start)))

	return data, nil
}

// LoadCredentials fetches and parses the access feed. It is fetched on each
// login attempt rather than cached, so revoking a row in the sheet takes
// effect immediately.
func (l *Loader) LoadCredentials(ctx context.Context) ([]Credential, error) {
	payload, err := l.client.Fetch(ctx, l.urls.Users)
	if err != nil {
		return nil, fmt.Errorf("users feed: %w", err)
	}
	return ParseCredentials(payload)
}

func latestIssueDate(ctes []domain.Cte) time.Time {
	var max time.Time
	for i := range ctes {
		if ctes[i].IssueDate.After(max) {
			max = ctes[i].IssueDate
		}
	}
	return max
}
