package stats

import (
	"time"

	"ctedash/pkg/contracts/domain"
)

// SLABucket classifies a document's delivery-confirmation state. The three
// buckets partition every delivery-side document: exactly one applies.
type SLABucket int

const (
	// SLAOnTime means the delivery was confirmed within the deadline.
	SLAOnTime SLABucket = iota
	// SLALate means the delivery was confirmed after the deadline.
	SLALate
	// SLANoConfirmation means no delivery confirmation exists yet.
	SLANoConfirmation
)

// String returns the string representation of the bucket.
func (b SLABucket) String() string {
	switch b {
	case SLAOnTime:
		return "on_time"
	case SLALate:
		return "late"
	case SLANoConfirmation:
		return "no_confirmation"
	default:
		return "unknown"
	}
}

// ManifestBucket classifies a document's transport-manifest (MDFe) state.
type ManifestBucket int

const (
	// ManifestPresent means an MDFe was issued for the document.
	ManifestPresent ManifestBucket = iota
	// ManifestMissing means no MDFe is linked to the document.
	ManifestMissing
)

// String returns the string representation of the bucket.
func (b ManifestBucket) String() string {
	switch b {
	case ManifestPresent:
		return "with_manifest"
	case ManifestMissing:
		return "without_manifest"
	default:
		return "unknown"
	}
}

// PhotoBucket classifies a document's proof-of-delivery photo state. Photo
// coverage is only meaningful once a delivery confirmation exists, so
// documents in the SLANoConfirmation bucket land in PhotoPending rather than
// either of the with/without buckets.
type PhotoBucket int

const (
	// PhotoPresent means the delivery confirmation carries a photo.
	PhotoPresent PhotoBucket = iota
	// PhotoMissing means the delivery was confirmed without a photo.
	PhotoMissing
	// PhotoPending means there is no confirmation to attach a photo to yet.
	PhotoPending
)

// String returns the string representation of the bucket.
func (b PhotoBucket) String() string {
	switch b {
	case PhotoPresent:
		return "with_photo"
	case PhotoMissing:
		return "without_photo"
	case PhotoPending:
		return "pending_confirmation"
	default:
		return "unknown"
	}
}

// UnitStats holds all computed indicators for one branch, plus the
// underlying document lists that back each counter for drill-down tables.
// For every bucket, len(list) == count.
type UnitStats struct {
	Unit string `json:"unit"`

	// Revenue indicators. Realized sums documents sold (collection side);
	// Received sums documents delivered here, a distinct notion.
	Realized          float64 `json:"realized"`
	Target            float64 `json:"target"`
	Projected         float64 `json:"projected"`
	ProjectionPercent float64 `json:"projection_percent"`
	RevenueOnRefDay   float64 `json:"revenue_on_ref_day"`
	Received          float64 `json:"received"`

	// Delivery SLA counters (delivery side, mutually exclusive).
	OnTimeCount         int `json:"on_time_count"`
	LateCount           int `json:"late_count"`
	NoConfirmationCount int `json:"no_confirmation_count"`

	// Manifest counters (collection side, mutually exclusive).
	ManifestCount   int `json:"manifest_count"`
	NoManifestCount int `json:"no_manifest_count"`

	// Photo-proof counters; pending tracks confirmations that do not exist
	// yet and is disjoint from the with/without pair.
	WithPhotoCount    int `json:"with_photo_count"`
	WithoutPhotoCount int `json:"without_photo_count"`
	PendingPhotoCount int `json:"pending_photo_count"`

	SalesDocs          []domain.Cte `json:"sales_docs,omitempty"`
	OnTimeDocs         []domain.Cte `json:"on_time_docs,omitempty"`
	LateDocs           []domain.Cte `json:"late_docs,omitempty"`
	NoConfirmationDocs []domain.Cte `json:"no_confirmation_docs,omitempty"`
	ManifestDocs       []domain.Cte `json:"manifest_docs,omitempty"`
	NoManifestDocs     []domain.Cte `json:"no_manifest_docs,omitempty"`
	WithPhotoDocs      []domain.Cte `json:"with_photo_docs,omitempty"`
	WithoutPhotoDocs   []domain.Cte `json:"without_photo_docs,omitempty"`
	PendingPhotoDocs   []domain.Cte `json:"pending_photo_docs,omitempty"`
}

// Summary aggregates the same counters across every unit, independent of any
// single-unit filter applied to the per-unit list.
type Summary struct {
	Realized          float64 `json:"realized"`
	Target            float64 `json:"target"`
	Projected         float64 `json:"projected"`
	ProjectionPercent float64 `json:"projection_percent"`
	RevenueOnRefDay   float64 `json:"revenue_on_ref_day"`
	Received          float64 `json:"received"`

	// RemainingDailyTarget is the revenue each remaining day of the period
	// must bring in for the total target to still be met.
	RemainingDailyTarget float64 `json:"remaining_daily_target"`

	OnTimeCount         int `json:"on_time_count"`
	LateCount           int `json:"late_count"`
	NoConfirmationCount int `json:"no_confirmation_count"`
	ManifestCount       int `json:"manifest_count"`
	NoManifestCount     int `json:"no_manifest_count"`
	WithPhotoCount      int `json:"with_photo_count"`
	WithoutPhotoCount   int `json:"without_photo_count"`
	PendingPhotoCount   int `json:"pending_photo_count"`

	// TotalDocuments counts every document inside the filter that reached
	// aggregation (documents with no resolvable unit are dropped upstream).
	TotalDocuments int `json:"total_documents"`

	// RefDate is the "as of" day for day-specific figures: the latest issue
	// date inside the active filter, or the last known load date when the
	// filtered set is empty.
	RefDate time.Time `json:"ref_date"`
}

// Result is the full output of one Compute invocation.
type Result struct {
	Summary Summary     `json:"summary"`
	Units   []UnitStats `json:"units"`
}

// Options selects the slice of data a Compute call aggregates over.
type Options struct {
	// Range restricts aggregation to documents issued inside the inclusive
	// calendar-date range. Zero value means no restriction.
	Range domain.DateRange
	// Unit restricts the returned per-unit list to a single branch (exact
	// match on the normalized name). The global summary is unaffected.
	Unit string
	// IncludeDocs controls whether drill-down document lists are populated.
	IncludeDocs bool
}
