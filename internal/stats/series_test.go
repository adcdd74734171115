package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctedash/pkg/contracts/domain"
)

func TestDailySeries(t *testing.T) {
	ctes := []domain.Cte{
		{ID: "1", IssueDate: day(1), CollectionUnit: "MATRIZ", Value: 100},
		{ID: "2", IssueDate: day(1), CollectionUnit: "MATRIZ", Value: 200},
		{ID: "3", IssueDate: day(2), CollectionUnit: "FILIAL SUL", Value: 300},
		{ID: "4", IssueDate: day(4), CollectionUnit: "MATRIZ", Value: 900},
	}

	s := DailySeries(ctes, SeriesOptions{})

	require.Len(t, s.Points, 3)
	assert.Equal(t, "2024-03-01", s.Points[0].Date)
	assert.Equal(t, 300.0, s.Points[0].Value)
	assert.Equal(t, 2, s.Points[0].Count)
	assert.Equal(t, "2024-03-02", s.Points[1].Date)
	assert.Equal(t, "2024-03-04", s.Points[2].Date)

	assert.InDelta(t, 500.0, s.Average, 1e-9)
	assert.Equal(t, PerformanceBelow, s.Points[0].Performance)
	assert.Equal(t, PerformanceBelow, s.Points[1].Performance)
	assert.Equal(t, PerformanceAbove, s.Points[2].Performance)
}

func TestDailySeriesUnitFilter(t *testing.T) {
	ctes := []domain.Cte{
		{ID: "1", IssueDate: day(1), CollectionUnit: "MATRIZ", Value: 100},
		{ID: "2", IssueDate: day(1), CollectionUnit: "FILIAL SUL", Value: 500},
	}

	s := DailySeries(ctes, SeriesOptions{Unit: "matriz"})

	require.Len(t, s.Points, 1)
	assert.Equal(t, 100.0, s.Points[0].Value)
	assert.Equal(t, 1, s.Points[0].Count)
}

func TestDailySeriesRangeFilter(t *testing.T) {
	ctes := []domain.Cte{
		{ID: "1", IssueDate: day(1), CollectionUnit: "MATRIZ", Value: 100},
		{ID: "2", IssueDate: day(3), CollectionUnit: "MATRIZ", Value: 200},
		{ID: "3", IssueDate: day(5), CollectionUnit: "MATRIZ", Value: 300},
	}

	s := DailySeries(ctes, SeriesOptions{Range: domain.DateRange{Start: day(2), End: day(4)}})

	require.Len(t, s.Points, 1)
	assert.Equal(t, "2024-03-03", s.Points[0].Date)
}

func TestDailySeriesDropsZeroDays(t *testing.T) {
	ctes := []domain.Cte{
		{ID: "1", IssueDate: day(1), CollectionUnit: "MATRIZ", Value: 0},
		{ID: "2", IssueDate: day(2), CollectionUnit: "MATRIZ", Value: 50},
	}

	s := DailySeries(ctes, SeriesOptions{})

	require.Len(t, s.Points, 1)
	assert.Equal(t, "2024-03-02", s.Points[0].Date)
}

func TestDailySeriesEmpty(t *testing.T) {
	s := DailySeries(nil, SeriesOptions{})

	assert.Empty(t, s.Points)
	assert.Zero(t, s.Average)
}

func TestDailySeriesSingleDayIsAverage(t *testing.T) {
	ctes := []domain.Cte{
		{ID: "1", IssueDate: day(1), CollectionUnit: "MATRIZ", Value: 700},
	}

	s := DailySeries(ctes, SeriesOptions{})

	require.Len(t, s.Points, 1)
	assert.Equal(t, PerformanceAverage, s.Points[0].Performance)
}
