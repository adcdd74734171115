package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRankings(t *testing.T) {
	units := []UnitStats{
		{
			Unit: "MATRIZ", Realized: 1500, Projected: 4500, ProjectionPercent: 45,
			OnTimeCount: 8, LateCount: 1, NoConfirmationCount: 1,
			ManifestCount: 9, NoManifestCount: 1,
		},
		{
			Unit: "FILIAL SUL", Realized: 2500, Projected: 7500, ProjectionPercent: 150,
			OnTimeCount: 2, LateCount: 2, NoConfirmationCount: 0,
			ManifestCount: 4, NoManifestCount: 0,
		},
		{
			Unit: "FILIAL NORTE", Realized: 0,
		},
	}

	r := BuildRankings(units)

	// Sales ranked by realized revenue.
	require.Len(t, r.Sales, 3)
	assert.Equal(t, "FILIAL SUL", r.Sales[0].Unit)
	assert.Equal(t, "MATRIZ", r.Sales[1].Unit)
	assert.Equal(t, "FILIAL NORTE", r.Sales[2].Unit)
	assert.Equal(t, 2500.0, r.Sales[0].Realized)
	assert.Equal(t, 150.0, r.Sales[0].ProjectionPercent)

	// Delivery ranked by on-time percentage.
	require.Len(t, r.Delivery, 3)
	assert.Equal(t, "MATRIZ", r.Delivery[0].Unit)
	assert.Equal(t, 10, r.Delivery[0].Total)
	assert.InDelta(t, 80.0, r.Delivery[0].PctOnTime, 1e-9)
	assert.InDelta(t, 10.0, r.Delivery[0].PctLate, 1e-9)
	assert.InDelta(t, 10.0, r.Delivery[0].PctNoConfirmation, 1e-9)
	assert.Equal(t, "FILIAL SUL", r.Delivery[1].Unit)
	assert.InDelta(t, 50.0, r.Delivery[1].PctOnTime, 1e-9)

	// A unit with no delivery documents divides to zero, not NaN.
	norte := r.Delivery[2]
	assert.Equal(t, "FILIAL NORTE", norte.Unit)
	assert.Zero(t, norte.Total)
	assert.Zero(t, norte.PctOnTime)

	// Manifest ranked by coverage percentage.
	require.Len(t, r.Manifest, 3)
	assert.Equal(t, "FILIAL SUL", r.Manifest[0].Unit)
	assert.InDelta(t, 100.0, r.Manifest[0].PctManifest, 1e-9)
	assert.Equal(t, "MATRIZ", r.Manifest[1].Unit)
	assert.InDelta(t, 90.0, r.Manifest[1].PctManifest, 1e-9)
	assert.InDelta(t, 10.0, r.Manifest[1].PctMissing, 1e-9)
}

func TestBuildRankingsTiebreakByName(t *testing.T) {
	units := []UnitStats{
		{Unit: "B", Realized: 100},
		{Unit: "A", Realized: 100},
	}

	r := BuildRankings(units)

	assert.Equal(t, "A", r.Sales[0].Unit)
	assert.Equal(t, "B", r.Sales[1].Unit)
}

func TestBuildRankingsEmpty(t *testing.T) {
	r := BuildRankings(nil)

	assert.Empty(t, r.Sales)
	assert.Empty(t, r.Delivery)
	assert.Empty(t, r.Manifest)
}
