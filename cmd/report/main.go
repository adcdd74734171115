// Command report fetches the feeds once and writes the filtered document
// list to a CSV or XLSX file, for ad-hoc reporting without the web server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ctedash/internal/config"
	"ctedash/internal/exporter"
	"ctedash/internal/feeds"
	"ctedash/internal/infrastructure"
	"ctedash/internal/normalize"
	"ctedash/pkg/contracts/domain"
)

func main() {
	output := flag.String("out", "", "output file; extension selects the format (.csv or .xlsx)")
	unit := flag.String("unit", "", "restrict to one branch (matches either side of the document)")
	start := flag.String("start", "", "start date, YYYY-MM-DD inclusive")
	end := flag.String("end", "", "end date, YYYY-MM-DD inclusive")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfg.Logging.Output = "stdout"
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *output == "" {
		*output = fmt.Sprintf("ctes_%s.csv", time.Now().Format("2006-01-02"))
	}
	ext := strings.ToLower(filepath.Ext(*output))
	if ext != ".csv" && ext != ".xlsx" {
		logger.Error("unsupported output format", slog.String("output", *output))
		os.Exit(1)
	}

	dateRange, err := parseRange(*start, *end)
	if err != nil {
		logger.Error("invalid date range", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Feeds.FetchTimeout*2)
	defer cancel()

	client := feeds.NewClient(cfg.Feeds.FetchTimeout, logger)
	loader := feeds.NewLoader(client, feeds.URLs{
		Ctes:     cfg.Feeds.CtesURL,
		Targets:  cfg.Feeds.TargetsURL,
		Calendar: cfg.Feeds.CalendarURL,
		Users:    cfg.Feeds.UsersURL,
	}, logger)

	data, err := loader.Load(ctx)
	if err != nil {
		logger.Error("feed load failed", "error", err)
		os.Exit(1)
	}

	ctes := filterDocuments(data.Ctes, dateRange, *unit)
	logger.Info("documents selected",
		slog.Int("total", len(data.Ctes)),
		slog.Int("selected", len(ctes)))

	f, err := os.Create(*output)
	if err != nil {
		logger.Error("failed to create output file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if ext == ".xlsx" {
		err = exporter.WriteXLSX(f, ctes)
	} else {
		err = exporter.WriteCSV(f, ctes)
	}
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("report written",
		slog.String("file", *output),
		slog.Int("documents", len(ctes)))
}

func parseRange(start, end string) (domain.DateRange, error) {
	var r domain.DateRange
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return r, fmt.Errorf("start: %w", err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return r, fmt.Errorf("end: %w", err)
		}
		r.End = t
	}
	return r, nil
}

func filterDocuments(ctes []domain.Cte, dateRange domain.DateRange, unit string) []domain.Cte {
	unit = normalize.UnitName(unit)
	out := make([]domain.Cte, 0, len(ctes))
	for i := range ctes {
		c := ctes[i]
		if !dateRange.IsZero() && !dateRange.Contains(c.IssueDate) {
			continue
		}
		if unit != "" && c.CollectionUnit != unit && c.DeliveryUnit != unit {
			continue
		}
		out = append(out, c)
	}
	return out
}
