package stats

import (
	"sort"
)

// SalesRankingRow is one branch in the sales ranking table.
type SalesRankingRow struct {
	Unit              string  `json:"unit"`
	Realized          float64 `json:"realized"`
	Projected         float64 `json:"projected"`
	ProjectionPercent float64 `json:"projection_percent"`
}

// DeliveryRankingRow is one branch in the delivery-pendency ranking table.
// Percentages partition the branch's delivery-side documents.
type DeliveryRankingRow struct {
	Unit                string  `json:"unit"`
	Total               int     `json:"total"`
	PctOnTime           float64 `json:"pct_on_time"`
	PctNoConfirmation   float64 `json:"pct_no_confirmation"`
	PctLate             float64 `json:"pct_late"`
	OnTimeCount         int     `json:"on_time_count"`
	NoConfirmationCount int     `json:"no_confirmation_count"`
	LateCount           int     `json:"late_count"`
}

// ManifestRankingRow is one branch in the manifest-coverage ranking table.
type ManifestRankingRow struct {
	Unit        string  `json:"unit"`
	Total       int     `json:"total"`
	PctManifest float64 `json:"pct_manifest"`
	PctMissing  float64 `json:"pct_missing"`
}

// Rankings bundles the three manager-view ranking tables derived from the
// per-unit statistics.
type Rankings struct {
	Sales    []SalesRankingRow    `json:"sales"`
	Delivery []DeliveryRankingRow `json:"delivery"`
	Manifest []ManifestRankingRow `json:"manifest"`
}

// BuildRankings derives the ranking tables from computed unit statistics.
// Sales are ordered by realized revenue, delivery by on-time percentage and
// manifests by coverage, all descending with the unit name as tiebreaker.
func BuildRankings(units []UnitStats) Rankings {
	r := Rankings{
		Sales:    make([]SalesRankingRow, 0, len(units)),
		Delivery: make([]DeliveryRankingRow, 0, len(units)),
		Manifest: make([]ManifestRankingRow, 0, len(units)),
	}

	for i := range units {
		u := &units[i]

		r.Sales = append(r.Sales, SalesRankingRow{
			Unit:              u.Unit,
			Realized:          u.Realized,
			Projected:         u.Projected,
			ProjectionPercent: u.ProjectionPercent,
		})

		row := DeliveryRankingRow{
			Unit:                u.Unit,
			Total:               u.OnTimeCount + u.LateCount + u.NoConfirmationCount,
			OnTimeCount:         u.OnTimeCount,
			NoConfirmationCount: u.NoConfirmationCount,
			LateCount:           u.LateCount,
		}
		if row.Total > 0 {
			row.PctOnTime = float64(u.OnTimeCount) / float64(row.Total) * 100
			row.PctNoConfirmation = float64(u.NoConfirmationCount) / float64(row.Total) * 100
			row.PctLate = float64(u.LateCount) / float64(row.Total) * 100
		}
		r.Delivery = append(r.Delivery, row)

		mrow := ManifestRankingRow{
			Unit:  u.Unit,
			Total: u.ManifestCount + u.NoManifestCount,
		}
		if mrow.Total > 0 {
			mrow.PctManifest = float64(u.ManifestCount) / float64(mrow.Total) * 100
			mrow.PctMissing = float64(u.NoManifestCount) / float64(mrow.Total) * 100
		}
		r.Manifest = append(r.Manifest, mrow)
	}

	sort.Slice(r.Sales, func(i, j int) bool {
		if r.Sales[i].Realized != r.Sales[j].Realized {
			return r.Sales[i].Realized > r.Sales[j].Realized
		}
		return r.Sales[i].Unit < r.Sales[j].Unit
	})
	sort.Slice(r.Delivery, func(i, j int) bool {
		if r.Delivery[i].PctOnTime != r.Delivery[j].PctOnTime {
			return r.Delivery[i].PctOnTime > r.Delivery[j].PctOnTime
		}
		return r.Delivery[i].Unit < r.Delivery[j].Unit
	})
	sort.Slice(r.Manifest, func(i, j int) bool {
		if r.Manifest[i].PctManifest != r.Manifest[j].PctManifest {
			return r.Manifest[i].PctManifest > r.Manifest[j].PctManifest
		}
		return r.Manifest[i].Unit < r.Manifest[j].Unit
	})

	return r
}
