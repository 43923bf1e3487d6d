package models

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot trigger provenance.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// PriceStats is a pricing distribution computed over the outlier-cleaned
// avg-price-per-area series of a locality.
type PriceStats struct {
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Avg             float64 `json:"avg"`
	Median          float64 `json:"median"`
	P25             float64 `json:"p25"`
	P75             float64 `json:"p75"`
	StdDev          float64 `json:"std_dev"`
	OutliersRemoved int     `json:"outliers_removed"`
}

// ShareCount pairs an absolute count with its percentage share of a total.
type ShareCount struct {
	Count    int     `json:"count"`
	SharePct float64 `json:"share_pct"`
}

// DataQuality classifies the age of the records feeding an aggregate.
// Fresh is <30 days old, Recent 30-90 days, Stale >90 days.
type DataQuality struct {
	Fresh         int     `json:"fresh"`
	Recent        int     `json:"recent"`
	Stale         int     `json:"stale"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// TrendDelta captures period-over-period movement against the immediately
// preceding snapshot. All fields are zero for a locality's first snapshot.
//
// NewSupply is floored at zero: supply reductions from completions or
// deactivations are not reported as negative new supply. The signed
// movement is still visible through TotalUnitsChangePct.
type TrendDelta struct {
	AvgPriceChangePct   float64 `json:"avg_price_change_pct"`
	AvgPriceChangeAbs   float64 `json:"avg_price_change_abs"`
	NewSupply           int     `json:"new_supply"`
	TotalUnitsChangePct float64 `json:"total_units_change_pct"`
}

// MarketSnapshot is a materialized, dated market aggregate for one
// (org, city, area) locality. At most one snapshot exists per locality per
// calendar day; regenerating within the same day overwrites in place.
type MarketSnapshot struct {
	ID                uuid.UUID             `json:"id"`
	OrgID             uuid.UUID             `json:"org_id"`
	City              string                `json:"city"`
	Area              string                `json:"area"`
	SnapshotDate      time.Time             `json:"snapshot_date"`
	Trigger           string                `json:"trigger"`
	TotalProjects     int                   `json:"total_projects"`
	TotalUnits        int                   `json:"total_units"`
	Pricing           PriceStats            `json:"pricing"`
	UnitTypeMix       map[string]ShareCount `json:"unit_type_mix"`
	StatusMix         map[string]ShareCount `json:"status_mix"`
	AmenityPrevalence map[string]float64    `json:"amenity_prevalence"`
	Quality           DataQuality           `json:"quality"`
	Trend             TrendDelta            `json:"trend"`
	Fingerprint       string                `json:"fingerprint"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// MarketOverview is the on-demand aggregate produced by the overview
// builder. It shares its statistical blocks with MarketSnapshot but is
// never persisted directly.
type MarketOverview struct {
	City              string                `json:"city"`
	Area              string                `json:"area"`
	TotalProjects     int                   `json:"total_projects"`
	TotalUnits        int                   `json:"total_units"`
	Pricing           PriceStats            `json:"pricing"`
	UnitTypeMix       map[string]ShareCount `json:"unit_type_mix"`
	StatusMix         map[string]ShareCount `json:"status_mix"`
	AmenityPrevalence map[string]float64    `json:"amenity_prevalence"`
	Quality           DataQuality           `json:"quality"`
	Fingerprint       string                `json:"fingerprint"`
	// Message explains an empty result ("no data" is a first-class state,
	// not an error).
	Message string `json:"message,omitempty"`
}

// TrendPoint is one snapshot reduced to its trend-relevant figures.
type TrendPoint struct {
	Date          time.Time `json:"date"`
	AvgPrice      float64   `json:"avg_price"`
	TotalUnits    int       `json:"total_units"`
	TotalProjects int       `json:"total_projects"`
}

// TrendReport is a time-ordered view over a locality's snapshot history.
type TrendReport struct {
	City              string       `json:"city"`
	Area              string       `json:"area"`
	Months            int          `json:"months"`
	Points            []TrendPoint `json:"points"`
	Latest            *TrendDelta  `json:"latest,omitempty"`
	SufficientHistory bool         `json:"sufficient_history"`
	Message           string       `json:"message,omitempty"`
}
