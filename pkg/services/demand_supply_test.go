package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestAnalyze_NoData(t *testing.T) {
	svc := NewDemandSupplyService(&fakeCompetitorRepo{}, zap.NewNop())

	report, err := svc.Analyze(context.Background(), uuid.New(), "Pune", "Baner")
	require.NoError(t, err)

	assert.NotEmpty(t, report.Message)
	assert.Empty(t, report.ByUnitType)
	assert.Equal(t, 0, report.TotalUnits)
}

func TestAnalyze_GroupsAndRanksByShare(t *testing.T) {
	orgID := uuid.New()
	now := time.Now()

	a := testCompetitor(orgID, "A", 5000, now)
	a.UnitMix = []models.UnitMixEntry{
		{UnitType: "2 BHK", TotalUnits: 60, AvailableUnits: 20, PriceMin: floatPtr(4000), PriceMax: floatPtr(6000)},
		{UnitType: "3 BHK", TotalUnits: 40, AvailableUnits: 10},
	}

	b := testCompetitor(orgID, "B", 5200, now)
	b.UnitMix = []models.UnitMixEntry{
		{UnitType: "2_bhk", TotalUnits: 80, AvailableUnits: 30, PriceMin: floatPtr(5000), PriceMax: floatPtr(7000)},
	}

	svc := NewDemandSupplyService(&fakeCompetitorRepo{records: []*models.Competitor{a, b}}, zap.NewNop())

	report, err := svc.Analyze(context.Background(), orgID, "Pune", "Baner")
	require.NoError(t, err)

	assert.Equal(t, 180, report.TotalUnits)
	require.Len(t, report.ByUnitType, 2)

	// Largest supply share first.
	twoBHK := report.ByUnitType[0]
	assert.Equal(t, "2_bhk", twoBHK.UnitType)
	assert.Equal(t, 140, twoBHK.TotalUnits)
	assert.Equal(t, 50, twoBHK.AvailableUnits)
	assert.Equal(t, 2, twoBHK.Projects)
	assert.Equal(t, 2, twoBHK.PricedEntries)
	// (4000+6000)/2 and (5000+7000)/2 average to 5500.
	assert.InDelta(t, 5500.0, twoBHK.AvgPrice, 1e-9)
	assert.InDelta(t, 140.0/180.0*100, twoBHK.SupplySharePct, 1e-9)

	threeBHK := report.ByUnitType[1]
	assert.Equal(t, "3_bhk", threeBHK.UnitType)
	assert.Equal(t, 0, threeBHK.PricedEntries)
	assert.Equal(t, 0.0, threeBHK.AvgPrice)
}

func TestAnalyze_LifecyclePartition(t *testing.T) {
	orgID := uuid.New()
	now := time.Now()

	mix := func(units int) []models.UnitMixEntry {
		return []models.UnitMixEntry{{UnitType: "2_bhk", TotalUnits: units}}
	}

	upcoming := testCompetitor(orgID, "Upcoming", 5000, now)
	upcoming.Status = models.StatusPreLaunch
	upcoming.UnitMix = mix(10)

	launched := testCompetitor(orgID, "Launched", 5000, now)
	launched.Status = models.StatusNewlyLaunched
	launched.UnitMix = mix(20)

	active := testCompetitor(orgID, "Active", 5000, now)
	active.Status = models.StatusUnderConstruction
	active.UnitMix = mix(40)

	done := testCompetitor(orgID, "Done", 5000, now)
	done.Status = models.StatusCompleted
	done.UnitMix = mix(80)

	svc := NewDemandSupplyService(&fakeCompetitorRepo{
		records: []*models.Competitor{upcoming, launched, active, done},
	}, zap.NewNop())

	report, err := svc.Analyze(context.Background(), orgID, "Pune", "Baner")
	require.NoError(t, err)

	assert.Equal(t, 30, report.Lifecycle.Upcoming)
	assert.Equal(t, 40, report.Lifecycle.Active)
	assert.Equal(t, 80, report.Lifecycle.Completed)
	assert.Equal(t, 150, report.TotalUnits)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "2 Bhk Apartments", typeLabel("2_bhk_apartment"))
	assert.Equal(t, "Villas", typeLabel("villa"))
	assert.Equal(t, "Studios", typeLabel("studio"))
}
