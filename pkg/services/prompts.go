package services

import (
	"encoding/json"
	"fmt"

	"github.com/propfolio/market-engine/pkg/models"
)

const analysisSystemPrompt = `You are a real-estate market analyst advising a property developer.
You are given the developer's project, a statistical summary of its local market, and the competing projects observed there.
Respond with a single JSON object and nothing else. No markdown, no prose outside the JSON.`

// analysisInstructions holds the per-type output contract appended to the
// user prompt. The required fields here mirror validatePayload.
var analysisInstructions = map[string]string{
	models.AnalysisTypePricing: `Return JSON with:
- "summary": one-paragraph market read
- "suggested_price_per_area_min" and "suggested_price_per_area_max": numeric price-per-area band for this project
- "pricing_rationale": why that band
- "recommendations": array of {"priority": 1..5, "action", "rationale", "impact"}, most urgent first`,

	models.AnalysisTypePositioning: `Return JSON with:
- "summary": one-paragraph market read
- "market_positioning": how this project should position against the listed competitors
- "recommendations": array of {"priority": 1..5, "action", "rationale", "impact"}, most urgent first`,

	models.AnalysisTypeLaunchStrategy: `Return JSON with:
- "summary": one-paragraph market read
- "launch_window": recommended launch timing and why
- "phasing_advice": how to phase inventory release
- "target_segments": array of buyer segments to target
- "recommendations": array of {"priority": 1..5, "action", "rationale", "impact"}, most urgent first`,
}

// competitorPayload is the reduced competitor view sent to the reasoning
// engine. The full record carries fields (coordinates, source tags) that
// only add tokens without changing the advice.
type competitorPayload struct {
	Name       string  `json:"name"`
	Developer  string  `json:"developer,omitempty"`
	Status     string  `json:"status"`
	PriceAvg   float64 `json:"price_per_area_avg,omitempty"`
	PriceMin   float64 `json:"price_per_area_min,omitempty"`
	PriceMax   float64 `json:"price_per_area_max,omitempty"`
	TotalUnits int     `json:"total_units,omitempty"`
	Amenities  int     `json:"amenity_count,omitempty"`
	Confidence float64 `json:"confidence"`
}

func buildUserPrompt(analysisType string, project *models.Project, overview *models.MarketOverview, competitors []*models.Competitor) (string, error) {
	payload := make([]competitorPayload, 0, len(competitors))
	for _, c := range competitors {
		payload = append(payload, competitorPayload{
			Name:       c.Name,
			Developer:  c.Developer,
			Status:     c.Status,
			PriceAvg:   c.Pricing.PerAreaAvg,
			PriceMin:   c.Pricing.PerAreaMin,
			PriceMax:   c.Pricing.PerAreaMax,
			TotalUnits: c.TotalUnits(),
			Amenities:  len(c.Amenities),
			Confidence: c.Confidence,
		})
	}

	competitorJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal competitor payload: %w", err)
	}
	marketJSON, err := json.Marshal(map[string]any{
		"total_projects": overview.TotalProjects,
		"total_units":    overview.TotalUnits,
		"pricing":        overview.Pricing,
		"unit_type_mix":  overview.UnitTypeMix,
		"status_mix":     overview.StatusMix,
		"data_quality":   overview.Quality,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal market summary: %w", err)
	}

	return fmt.Sprintf(`Project: %s (locality: %s, %s)

Market summary (outlier-cleaned statistics):
%s

Observed competing projects:
%s

%s`, project.Name, project.Area, project.City, marketJSON, competitorJSON, analysisInstructions[analysisType]), nil
}
