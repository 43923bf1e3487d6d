// Package services implements the market intelligence core: locality
// aggregation, daily snapshots with trend differencing, demand/supply
// analysis, and cached LLM-backed recommendations.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/fingerprint"
	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/repositories"
	"github.com/propfolio/market-engine/pkg/stats"
)

// Record age classification windows.
const (
	freshWindow  = 30 * 24 * time.Hour
	recentWindow = 90 * 24 * time.Hour
)

// MarketOverviewService aggregates active competitor records for a
// locality into a market summary.
type MarketOverviewService interface {
	// BuildOverview computes the market summary for (org, city, area).
	// Zero competitors is a first-class "no data" result, not an error.
	BuildOverview(ctx context.Context, orgID uuid.UUID, city, area string) (*models.MarketOverview, error)
}

type marketOverviewService struct {
	competitorRepo    repositories.CompetitorRepository
	amenityVocabulary []string
	now               func() time.Time
	logger            *zap.Logger
}

// NewMarketOverviewService creates a market overview service.
func NewMarketOverviewService(
	competitorRepo repositories.CompetitorRepository,
	amenityVocabulary []string,
	logger *zap.Logger,
) MarketOverviewService {
	return &marketOverviewService{
		competitorRepo:    competitorRepo,
		amenityVocabulary: amenityVocabulary,
		now:               time.Now,
		logger:            logger.Named("market-overview"),
	}
}

func (s *marketOverviewService) BuildOverview(ctx context.Context, orgID uuid.UUID, city, area string) (*models.MarketOverview, error) {
	records, err := s.competitorRepo.FindActive(ctx, orgID, city, area)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}

	if len(records) == 0 {
		return &models.MarketOverview{
			City:              city,
			Area:              area,
			UnitTypeMix:       map[string]models.ShareCount{},
			StatusMix:         map[string]models.ShareCount{},
			AmenityPrevalence: map[string]float64{},
			Fingerprint:       fingerprint.Compute(nil),
			Message:           "no competitor data collected for this locality yet",
		}, nil
	}

	overview := &models.MarketOverview{
		City:              city,
		Area:              area,
		TotalProjects:     len(records),
		Pricing:           buildPriceStats(records),
		UnitTypeMix:       map[string]models.ShareCount{},
		StatusMix:         map[string]models.ShareCount{},
		AmenityPrevalence: map[string]float64{},
		Quality:           s.classifyQuality(records),
		Fingerprint:       fingerprint.Compute(records),
	}

	for _, r := range records {
		overview.TotalUnits += r.TotalUnits()
	}
	s.buildUnitTypeMix(overview, records)
	s.buildStatusMix(overview, records)
	s.buildAmenityPrevalence(overview, records)

	s.logger.Debug("built market overview",
		zap.String("city", city),
		zap.String("area", area),
		zap.Int("projects", overview.TotalProjects),
		zap.Int("outliers_removed", overview.Pricing.OutliersRemoved))

	return overview, nil
}

// buildPriceStats computes the pricing distribution over the
// outlier-cleaned avg-price-per-area series. Published figures always
// come from the cleaned series so one erroneous listing cannot skew the
// market price.
func buildPriceStats(records []*models.Competitor) models.PriceStats {
	prices := priceSeries(records)
	if len(prices) == 0 {
		return models.PriceStats{}
	}

	cleaned, removed := stats.RemoveOutliers(prices)
	if len(cleaned) == 0 {
		return models.PriceStats{OutliersRemoved: removed}
	}

	sorted := make([]float64, len(cleaned))
	copy(sorted, cleaned)
	sort.Float64s(sorted)

	return models.PriceStats{
		Min:             sorted[0],
		Max:             sorted[len(sorted)-1],
		Avg:             stats.Mean(cleaned),
		Median:          stats.Median(sorted),
		P25:             stats.Percentile(sorted, 25),
		P75:             stats.Percentile(sorted, 75),
		StdDev:          stats.StdDev(cleaned),
		OutliersRemoved: removed,
	}
}

// priceSeries extracts the representative avg-price-per-area series.
// Records without a positive price are not observations.
func priceSeries(records []*models.Competitor) []float64 {
	prices := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Pricing.PerAreaAvg > 0 {
			prices = append(prices, r.Pricing.PerAreaAvg)
		}
	}
	return prices
}

func (s *marketOverviewService) buildUnitTypeMix(overview *models.MarketOverview, records []*models.Competitor) {
	counts := map[string]int{}
	total := 0
	for _, r := range records {
		for _, m := range r.UnitMix {
			if m.UnitType == "" {
				continue
			}
			counts[normalizeKey(m.UnitType)] += m.TotalUnits
			total += m.TotalUnits
		}
	}
	for unitType, count := range counts {
		overview.UnitTypeMix[unitType] = models.ShareCount{
			Count:    count,
			SharePct: share(count, total),
		}
	}
}

func (s *marketOverviewService) buildStatusMix(overview *models.MarketOverview, records []*models.Competitor) {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Status]++
	}
	for status, count := range counts {
		overview.StatusMix[status] = models.ShareCount{
			Count:    count,
			SharePct: share(count, len(records)),
		}
	}
}

// buildAmenityPrevalence reports, for each amenity in the fixed
// vocabulary, the fraction of projects carrying it.
func (s *marketOverviewService) buildAmenityPrevalence(overview *models.MarketOverview, records []*models.Competitor) {
	for _, amenity := range s.amenityVocabulary {
		carrying := 0
		for _, r := range records {
			for _, a := range r.Amenities {
				if normalizeKey(a) == amenity {
					carrying++
					break
				}
			}
		}
		overview.AmenityPrevalence[amenity] = share(carrying, len(records))
	}
}

// classifyQuality buckets each record's age at build time: fresh <30d,
// recent 30-90d, stale >90d.
func (s *marketOverviewService) classifyQuality(records []*models.Competitor) models.DataQuality {
	now := s.now()
	var q models.DataQuality
	var confSum float64

	for _, r := range records {
		age := now.Sub(r.CollectedAt)
		switch {
		case age < freshWindow:
			q.Fresh++
		case age <= recentWindow:
			q.Recent++
		default:
			q.Stale++
		}
		confSum += r.Confidence
	}
	q.AvgConfidence = confSum / float64(len(records))

	return q
}

// share returns count as a percentage of total, 0 when total is 0.
// Zero-count denominators are never errors: sparse data is the common
// case for a newly onboarded locality.
func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, " ", "_")))
}
