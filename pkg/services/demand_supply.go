package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/repositories"
)

// DemandSupplyService groups competitor inventory by unit type and
// lifecycle stage to surface oversupply/undersupply signals.
type DemandSupplyService interface {
	Analyze(ctx context.Context, orgID uuid.UUID, city, area string) (*models.DemandSupplyReport, error)
}

type demandSupplyService struct {
	competitorRepo repositories.CompetitorRepository
	logger         *zap.Logger
}

// NewDemandSupplyService creates a demand/supply analyzer.
func NewDemandSupplyService(competitorRepo repositories.CompetitorRepository, logger *zap.Logger) DemandSupplyService {
	return &demandSupplyService{
		competitorRepo: competitorRepo,
		logger:         logger.Named("demand-supply"),
	}
}

type unitTypeAccumulator struct {
	totalUnits     int
	availableUnits int
	projects       map[uuid.UUID]struct{}
	pricedEntries  int
	priceSum       float64
}

func (s *demandSupplyService) Analyze(ctx context.Context, orgID uuid.UUID, city, area string) (*models.DemandSupplyReport, error) {
	records, err := s.competitorRepo.FindActive(ctx, orgID, city, area)
	if err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}

	report := &models.DemandSupplyReport{
		City:       city,
		Area:       area,
		ByUnitType: []models.UnitTypeSupply{},
	}

	if len(records) == 0 {
		report.Message = "no competitor data collected for this locality yet"
		return report, nil
	}

	byType := map[string]*unitTypeAccumulator{}
	for _, r := range records {
		for _, m := range r.UnitMix {
			if m.UnitType == "" {
				continue
			}
			key := normalizeKey(m.UnitType)
			acc := byType[key]
			if acc == nil {
				acc = &unitTypeAccumulator{projects: map[uuid.UUID]struct{}{}}
				byType[key] = acc
			}
			acc.totalUnits += m.TotalUnits
			acc.availableUnits += m.AvailableUnits
			acc.projects[r.ID] = struct{}{}
			// Average price only over entries that supplied a range.
			if m.PriceMin != nil && m.PriceMax != nil {
				acc.pricedEntries++
				acc.priceSum += (*m.PriceMin + *m.PriceMax) / 2
			}
		}
		report.TotalUnits += r.TotalUnits()

		units := r.TotalUnits()
		switch r.Status {
		case models.StatusPreLaunch, models.StatusNewlyLaunched:
			report.Lifecycle.Upcoming += units
		case models.StatusUnderConstruction, models.StatusReadyToMove:
			report.Lifecycle.Active += units
		case models.StatusCompleted:
			report.Lifecycle.Completed += units
		}
	}

	for unitType, acc := range byType {
		entry := models.UnitTypeSupply{
			UnitType:       unitType,
			Label:          typeLabel(unitType),
			TotalUnits:     acc.totalUnits,
			AvailableUnits: acc.availableUnits,
			Projects:       len(acc.projects),
			PricedEntries:  acc.pricedEntries,
			SupplySharePct: share(acc.totalUnits, report.TotalUnits),
		}
		if acc.pricedEntries > 0 {
			entry.AvgPrice = acc.priceSum / float64(acc.pricedEntries)
		}
		report.ByUnitType = append(report.ByUnitType, entry)
	}

	// The share ranking is the primary over-concentration signal, so the
	// order is part of the contract.
	sort.Slice(report.ByUnitType, func(i, j int) bool {
		if report.ByUnitType[i].SupplySharePct != report.ByUnitType[j].SupplySharePct {
			return report.ByUnitType[i].SupplySharePct > report.ByUnitType[j].SupplySharePct
		}
		return report.ByUnitType[i].UnitType < report.ByUnitType[j].UnitType
	})

	return report, nil
}

// typeLabel turns a normalized unit-type key into a display label, e.g.
// "2_bhk_apartment" -> "2 Bhk Apartments".
func typeLabel(unitType string) string {
	words := strings.Split(unitType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	label := strings.Join(words, " ")
	return inflection.Plural(label)
}
