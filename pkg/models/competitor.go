// Package models contains domain types for market-engine.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project lifecycle status values for competitor records.
const (
	StatusPreLaunch         = "pre-launch"
	StatusNewlyLaunched     = "newly-launched"
	StatusUnderConstruction = "under-construction"
	StatusReadyToMove       = "ready-to-move"
	StatusCompleted         = "completed"
)

// ValidStatuses lists every accepted lifecycle status.
var ValidStatuses = []string{
	StatusPreLaunch,
	StatusNewlyLaunched,
	StatusUnderConstruction,
	StatusReadyToMove,
	StatusCompleted,
}

// Competitor data-source tags.
const (
	SourceManual     = "manual"
	SourceBulkImport = "bulk_import"
	SourceAIResearch = "ai_research"
)

// PricingInfo is the pricing block observed for a competing project.
// All figures are price per unit area in the org's currency.
type PricingInfo struct {
	PerAreaMin      float64            `json:"per_area_min"`
	PerAreaMax      float64            `json:"per_area_max"`
	PerAreaAvg      float64            `json:"per_area_avg"`
	FloorRiseCharge float64            `json:"floor_rise_charge,omitempty"`
	FacingPremiums  map[string]float64 `json:"facing_premiums,omitempty"`
}

// UnitMixEntry describes one unit type offered by a competing project.
// Price figures are optional: imports frequently omit them, and consumers
// must only average over entries that carry one.
type UnitMixEntry struct {
	UnitType       string   `json:"unit_type"`
	AreaMin        float64  `json:"area_min,omitempty"`
	AreaMax        float64  `json:"area_max,omitempty"`
	PriceMin       *float64 `json:"price_min,omitempty"`
	PriceMax       *float64 `json:"price_max,omitempty"`
	TotalUnits     int      `json:"total_units"`
	AvailableUnits int      `json:"available_units"`
}

// Competitor is one observed competing project in a locality. Records are
// soft-deleted (IsActive=false) rather than removed, so that historical
// snapshots remain reproducible.
type Competitor struct {
	ID          uuid.UUID      `json:"id"`
	OrgID       uuid.UUID      `json:"org_id"`
	Name        string         `json:"name"`
	Developer   string         `json:"developer,omitempty"`
	City        string         `json:"city"`
	Area        string         `json:"area"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Status      string         `json:"status"`
	Pricing     PricingInfo    `json:"pricing"`
	UnitMix     []UnitMixEntry `json:"unit_mix"`
	Amenities   []string       `json:"amenities"`
	DataSource  string         `json:"data_source"`
	CollectedAt time.Time      `json:"collected_at"`
	Confidence  float64        `json:"confidence"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate enforces the record invariants: a known lifecycle status,
// confidence within [0,100], and a collection timestamp that is not in the
// future relative to ingestion.
func (c *Competitor) Validate(now time.Time) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.City == "" || c.Area == "" {
		return fmt.Errorf("city and area are required")
	}
	valid := false
	for _, s := range ValidStatuses {
		if c.Status == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid status %q", c.Status)
	}
	if c.Confidence < 0 || c.Confidence > 100 {
		return fmt.Errorf("confidence %.1f outside [0,100]", c.Confidence)
	}
	if c.CollectedAt.After(now) {
		return fmt.Errorf("collected_at is in the future")
	}
	return nil
}

// TotalUnits sums the declared unit counts across the unit mix.
func (c *Competitor) TotalUnits() int {
	total := 0
	for _, m := range c.UnitMix {
		total += m.TotalUnits
	}
	return total
}
