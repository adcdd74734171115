package stats

import (
	"sort"
	"time"

	"ctedash/internal/normalize"
	"ctedash/pkg/contracts/domain"
)

// Compute transforms one materialized data load into the global summary and
// the per-unit statistics, restricted by the options' date range. It is a
// pure function of its inputs: the accumulator map lives inside the call, so
// repeated invocations with identical inputs produce identical results.
//
// The engine makes a single pass over the documents. Each document is
// classified once per bucket family and the outcome feeds the summary and
// the owning units' counters alike; collection-side and delivery-side
// contributions of the same document go to (possibly different) units
// without double counting revenue, because realized and received are
// distinct fields.
func Compute(data domain.AppData, opts Options) Result {
	units := make(map[string]*UnitStats)

	// Seed from targets so a branch with a target and zero shipments still
	// reports an all-zero row.
	for _, t := range data.Targets {
		name := normalize.UnitName(t.Unit)
		if name == "" {
			continue
		}
		u := ensureUnit(units, name)
		u.Target = t.Target
	}

	refDate := referenceDate(data, opts.Range)

	summary := Summary{RefDate: refDate}

	for i := range data.Ctes {
		c := data.Ctes[i]
		if !opts.Range.IsZero() && !opts.Range.Contains(c.IssueDate) {
			continue
		}
		if !c.HasCollectionUnit() && !c.HasDeliveryUnit() {
			// Dropped during parsing; guarded here so a caller-built slice
			// cannot skew the totals either.
			continue
		}

		summary.TotalDocuments++

		// One classification per bucket family, shared by the summary and
		// the per-unit accumulation below.
		sla := ClassifySLA(c)
		manifest := ClassifyManifest(c)
		photo := ClassifyPhoto(c)
		onRefDay := domain.SameDay(c.IssueDate, refDate)

		if c.HasCollectionUnit() {
			u := ensureUnit(units, c.CollectionUnit)
			u.Realized += c.Value
			summary.Realized += c.Value
			if onRefDay {
				u.RevenueOnRefDay += c.Value
				summary.RevenueOnRefDay += c.Value
			}
			if opts.IncludeDocs {
				u.SalesDocs = append(u.SalesDocs, c)
			}

			switch manifest {
			case ManifestPresent:
				u.ManifestCount++
				summary.ManifestCount++
				if opts.IncludeDocs {
					u.ManifestDocs = append(u.ManifestDocs, c)
				}
			case ManifestMissing:
				u.NoManifestCount++
				summary.NoManifestCount++
				if opts.IncludeDocs {
					u.NoManifestDocs = append(u.NoManifestDocs, c)
				}
			}
		}

		if c.HasDeliveryUnit() {
			u := ensureUnit(units, c.DeliveryUnit)
			u.Received += c.Value
			summary.Received += c.Value

			switch sla {
			case SLAOnTime:
				u.OnTimeCount++
				summary.OnTimeCount++
				if opts.IncludeDocs {
					u.OnTimeDocs = append(u.OnTimeDocs, c)
				}
			case SLALate:
				u.LateCount++
				summary.LateCount++
				if opts.IncludeDocs {
					u.LateDocs = append(u.LateDocs, c)
				}
			case SLANoConfirmation:
				u.NoConfirmationCount++
				summary.NoConfirmationCount++
				if opts.IncludeDocs {
					u.NoConfirmationDocs = append(u.NoConfirmationDocs, c)
				}
			}

			switch photo {
			case PhotoPresent:
				u.WithPhotoCount++
				summary.WithPhotoCount++
				if opts.IncludeDocs {
					u.WithPhotoDocs = append(u.WithPhotoDocs, c)
				}
			case PhotoMissing:
				u.WithoutPhotoCount++
				summary.WithoutPhotoCount++
				if opts.IncludeDocs {
					u.WithoutPhotoDocs = append(u.WithoutPhotoDocs, c)
				}
			case PhotoPending:
				u.PendingPhotoCount++
				summary.PendingPhotoCount++
				if opts.IncludeDocs {
					u.PendingPhotoDocs = append(u.PendingPhotoDocs, c)
				}
			}
		}
	}

	// Post-pass: run-rate projection from the externally supplied day
	// counts. Deliberately a plain linear extrapolation; holidays from the
	// calendar feed are not consulted.
	days := data.FixedDays.Clamped()
	for _, u := range units {
		u.Projected = u.Realized / float64(days.Elapsed) * float64(days.Total)
		if u.Target > 0 {
			u.ProjectionPercent = u.Projected / u.Target * 100
		}
		summary.Target += u.Target
		summary.Projected += u.Projected
	}
	if summary.Target > 0 {
		summary.ProjectionPercent = summary.Projected / summary.Target * 100
	}
	remaining := days.Total - days.Elapsed
	if remaining < 1 {
		remaining = 1
	}
	if gap := summary.Target - summary.Realized; gap > 0 {
		summary.RemainingDailyTarget = gap / float64(remaining)
	}

	list := make([]UnitStats, 0, len(units))
	if opts.Unit != "" {
		if u, ok := units[normalize.UnitName(opts.Unit)]; ok {
			list = append(list, *u)
		}
	} else {
		for _, u := range units {
			list = append(list, *u)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Unit < list[j].Unit
		})
	}

	return Result{Summary: summary, Units: list}
}

// referenceDate derives the "as of" day: the maximum issue date among the
// documents passing the filter. The real wall clock is never consulted, so a
// manager browsing a past period sees the day figures for the last day of
// that period, not zeros.
func referenceDate(data domain.AppData, r domain.DateRange) time.Time {
	var max time.Time
	for i := range data.Ctes {
		c := data.Ctes[i]
		if !r.IsZero() && !r.Contains(c.IssueDate) {
			continue
		}
		if c.IssueDate.After(max) {
			max = c.IssueDate
		}
	}
	if max.IsZero() {
		return data.LastUpdate
	}
	return max
}

func ensureUnit(units map[string]*UnitStats, name string) *UnitStats {
	if u, ok := units[name]; ok {
		return u
	}
	u := &UnitStats{Unit: name}
	units[name] = u
	return u
}
