package stats

import (
	"sort"

	"ctedash/internal/normalize"
	"ctedash/pkg/contracts/domain"
)

// Performance labels a day's revenue relative to the period average, with a
// 5% tolerance band around the mean.
type Performance string

const (
	PerformanceAbove   Performance = "above"
	PerformanceAverage Performance = "average"
	PerformanceBelow   Performance = "below"
)

// SeriesPoint is one calendar day of the revenue trend chart.
type SeriesPoint struct {
	Date        string      `json:"date"` // YYYY-MM-DD
	Value       float64     `json:"value"`
	Count       int         `json:"count"`
	Performance Performance `json:"performance"`
}

// Series is the daily revenue trend over the selected slice: one point per
// day with sales, ordered ascending, plus the period average.
type Series struct {
	Points  []SeriesPoint `json:"points"`
	Average float64       `json:"average"`
}

// SeriesOptions selects the slice a DailySeries call buckets over.
type SeriesOptions struct {
	Range domain.DateRange
	// Unit restricts the series to documents sold by one branch.
	Unit string
}

// DailySeries buckets revenue by issue date for the trend chart. Revenue is
// attributed to the collection unit; days without sales are omitted rather
// than zero-filled, matching the dashboard's chart behavior.
func DailySeries(ctes []domain.Cte, opts SeriesOptions) Series {
	targetUnit := normalize.UnitName(opts.Unit)

	type bucket struct {
		value float64
		count int
	}
	daily := make(map[string]*bucket)

	for i := range ctes {
		c := ctes[i]
		if targetUnit != "" && c.CollectionUnit != targetUnit {
			continue
		}
		if !opts.Range.IsZero() && !opts.Range.Contains(c.IssueDate) {
			continue
		}
		key := c.IssueDate.Format("2006-01-02")
		b, ok := daily[key]
		if !ok {
			b = &bucket{}
			daily[key] = b
		}
		b.value += c.Value
		b.count++
	}

	points := make([]SeriesPoint, 0, len(daily))
	var total float64
	for date, b := range daily {
		if b.value <= 0 {
			continue
		}
		points = append(points, SeriesPoint{Date: date, Value: b.value, Count: b.count})
		total += b.value
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	var average float64
	if len(points) > 0 {
		average = total / float64(len(points))
	}
	for i := range points {
		points[i].Performance = classifyPerformance(points[i].Value, average)
	}

	return Series{Points: points, Average: average}
}

func classifyPerformance(value, average float64) Performance {
	switch {
	case value > average*1.05:
		return PerformanceAbove
	case value < average*0.95:
		return PerformanceBelow
	default:
		return PerformanceAverage
	}
}
