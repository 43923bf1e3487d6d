package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis types supported by the recommendation orchestrator. The
// reasoning engine's JSON payload is validated per type before it is
// accepted for caching.
const (
	AnalysisTypePricing        = "pricing"
	AnalysisTypePositioning    = "positioning"
	AnalysisTypeLaunchStrategy = "launch_strategy"
)

// ValidAnalysisTypes lists every accepted analysis type.
var ValidAnalysisTypes = []string{
	AnalysisTypePricing,
	AnalysisTypePositioning,
	AnalysisTypeLaunchStrategy,
}

// Data-quality tiers reported on analysis metadata. Tiers describe the
// input data, they never gate generation.
const (
	QualityTierHigh    = "high"
	QualityTierMedium  = "medium"
	QualityTierLow     = "low"
	QualityTierVeryLow = "very_low"
)

// Recommendation is one prioritized action item extracted from the
// reasoning engine's output. Priority 1 is the most urgent.
type Recommendation struct {
	Priority  int    `json:"priority"`
	Action    string `json:"action"`
	Rationale string `json:"rationale,omitempty"`
	Impact    string `json:"impact,omitempty"`
}

// AnalysisPayload is the structured document the reasoning engine must
// return. Which fields are required depends on the analysis type; see
// the orchestrator's validation.
type AnalysisPayload struct {
	Summary           string           `json:"summary"`
	MarketPositioning string           `json:"market_positioning,omitempty"`
	Recommendations   []Recommendation `json:"recommendations"`

	// Pricing-specific fields.
	SuggestedPricePerAreaMin *float64 `json:"suggested_price_per_area_min,omitempty"`
	SuggestedPricePerAreaMax *float64 `json:"suggested_price_per_area_max,omitempty"`
	PricingRationale         string   `json:"pricing_rationale,omitempty"`

	// Launch-strategy-specific fields.
	LaunchWindow   string   `json:"launch_window,omitempty"`
	PhasingAdvice  string   `json:"phasing_advice,omitempty"`
	TargetSegments []string `json:"target_segments,omitempty"`
}

// GenerationMeta records how a cached analysis was produced.
type GenerationMeta struct {
	QualityTier     string  `json:"quality_tier"`
	CompetitorCount int     `json:"competitor_count"`
	FreshCount      int     `json:"fresh_count"`
	AvgConfidence   float64 `json:"avg_confidence"`
	OutliersDropped int     `json:"outliers_dropped"`
	Attempts        int     `json:"attempts"`
	Model           string  `json:"model"`
	LatencyMS       int64   `json:"latency_ms"`
}

// CachedAnalysis is a cached reasoning-engine output, uniquely keyed by
// (org, project, analysis type). A new generation always upserts, so at
// most one live entry exists per key. The entry is unusable once the wall
// clock passes ExpiresAt or once the live competitor set's fingerprint no
// longer matches Fingerprint, whichever comes first.
type CachedAnalysis struct {
	OrgID        uuid.UUID       `json:"org_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	AnalysisType string          `json:"analysis_type"`
	Payload      AnalysisPayload `json:"payload"`
	Meta         GenerationMeta  `json:"meta"`
	Fingerprint  string          `json:"fingerprint"`
	GeneratedAt  time.Time       `json:"generated_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// Expired reports whether the entry is past its absolute TTL at now.
func (c *CachedAnalysis) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// AnalysisResult is what the orchestrator returns to callers. FromCache
// distinguishes a cache hit from a cost-bearing generation.
type AnalysisResult struct {
	Analysis  *CachedAnalysis `json:"analysis"`
	FromCache bool            `json:"from_cache"`
}

// Project is the minimal project context the orchestrator needs: the
// locality the project sells into. Full project management lives in the
// surrounding ERP, not here.
type Project struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Area      string    `json:"area"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocality reports whether the project has a resolved city/area. An
// analysis request for a project without one fails fast with a
// user-correctable error.
func (p *Project) HasLocality() bool {
	return p.City != "" && p.Area != ""
}
