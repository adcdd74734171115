package domain

import (
	"time"
)

// Cte represents a single CTe document (shipment record) from the
// operational feed. Unit names are stored in normalized form (trimmed,
// uppercase) so they can be used directly as map keys; status fields keep
// the raw feed text and are normalized at classification time.
type Cte struct {
	ID             string    `json:"id"`
	IssueDate      time.Time `json:"issue_date"`
	SLADeadline    time.Time `json:"sla_deadline"` // zero value means not tracked
	SLAStatus      string    `json:"sla_status"`
	CollectionUnit string    `json:"collection_unit"`
	DeliveryUnit   string    `json:"delivery_unit"`
	DeliveryProof  string    `json:"delivery_proof"`
	ManifestStatus string    `json:"manifest_status"`
	Value          float64   `json:"value"`
	Sender         string    `json:"sender,omitempty"`
	Recipient      string    `json:"recipient,omitempty"`
}

// HasSLADeadline reports whether a delivery confirmation deadline is tracked
// for this document.
func (c Cte) HasSLADeadline() bool {
	return !c.SLADeadline.IsZero()
}

// HasCollectionUnit reports whether the document contributes to
// collection-side (sales, manifest) aggregates.
func (c Cte) HasCollectionUnit() bool {
	return c.CollectionUnit != ""
}

// HasDeliveryUnit reports whether the document contributes to delivery-side
// (SLA, photo proof) aggregates.
func (c Cte) HasDeliveryUnit() bool {
	return c.DeliveryUnit != ""
}

// UnitTarget is one row of the revenue target feed. Every named unit is
// guaranteed a row in the computed statistics even with zero shipments.
type UnitTarget struct {
	Unit   string  `json:"unit"`
	Target float64 `json:"target"`
}

// FixedDays carries the externally supplied period day counts used by the
// revenue projection (calendar feed header row).
type FixedDays struct {
	Total   int `json:"total"`
	Elapsed int `json:"elapsed"`
}

// Clamped returns the day counts with both values forced to at least 1 so
// the projection never divides by zero.
func (f FixedDays) Clamped() FixedDays {
	if f.Total < 1 {
		f.Total = 1
	}
	if f.Elapsed < 1 {
		f.Elapsed = 1
	}
	return f
}

// DateRange is an inclusive calendar-date filter. Only the year, month and
// day of Start and End are significant; time-of-day is ignored.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, comparing calendar
// dates only (boundary days are included). An unset bound is open, so a
// start-only range keeps everything from Start onward and an end-only
// range everything up to End.
func (r DateRange) Contains(t time.Time) bool {
	d := dateOnly(t)
	if !r.Start.IsZero() && d.Before(dateOnly(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(dateOnly(r.End)) {
		return false
	}
	return true
}

// IsZero reports whether the range is unset (no filtering).
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AppData is one fully materialized load of the upstream feeds: the parsed
// shipment list, the revenue targets and the calendar information. It is the
// sole input of the aggregation engine; statistics are recomputed from it on
// every request and never persisted.
type AppData struct {
	Ctes       []Cte        `json:"ctes"`
	Targets    []UnitTarget `json:"targets"`
	RefDate    time.Time    `json:"ref_date"`
	Holidays   []time.Time  `json:"holidays"`
	LastUpdate time.Time    `json:"last_update"` // latest issue date seen in the feed
	FixedDays  FixedDays    `json:"fixed_days"`
	LoadedAt   time.Time    `json:"loaded_at"`
}

// User is one row of the access feed. Unit is empty for regional managers,
// who see every branch.
type User struct {
	Username string `json:"username"`
	Unit     string `json:"unit,omitempty"`
}

// IsManager reports whether the user has the cross-branch manager role.
func (u User) IsManager() bool {
	return u.Unit == ""
}
