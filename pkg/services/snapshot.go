package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/repositories"
)

// SnapshotService materializes dated market snapshots and reads them back
// as trend reports. Generation is idempotent per (org, city, area, day):
// a scheduled job and a manual request racing for the same locality
// converge on one row, last writer wins.
type SnapshotService interface {
	// GenerateSnapshot builds and upserts today's snapshot for the
	// locality. Returns nil (no error) when the locality has no
	// competitor data - there is nothing to snapshot.
	GenerateSnapshot(ctx context.Context, orgID uuid.UUID, city, area, trigger string) (*models.MarketSnapshot, error)

	// GetTrends reads the trailing months of snapshots, ascending by
	// date. Zero snapshots yields an explicit insufficient-history
	// result, not an error.
	GetTrends(ctx context.Context, orgID uuid.UUID, city, area string, months int) (*models.TrendReport, error)
}

type snapshotService struct {
	overviewSvc  MarketOverviewService
	snapshotRepo repositories.SnapshotRepository
	now          func() time.Time
	logger       *zap.Logger
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(
	overviewSvc MarketOverviewService,
	snapshotRepo repositories.SnapshotRepository,
	logger *zap.Logger,
) SnapshotService {
	return &snapshotService{
		overviewSvc:  overviewSvc,
		snapshotRepo: snapshotRepo,
		now:          time.Now,
		logger:       logger.Named("snapshot"),
	}
}

func (s *snapshotService) GenerateSnapshot(ctx context.Context, orgID uuid.UUID, city, area, trigger string) (*models.MarketSnapshot, error) {
	overview, err := s.overviewSvc.BuildOverview(ctx, orgID, city, area)
	if err != nil {
		return nil, err
	}
	if overview.TotalProjects == 0 {
		s.logger.Info("nothing to snapshot",
			zap.String("city", city),
			zap.String("area", area))
		return nil, nil
	}

	today := truncateToDay(s.now())

	prior, err := s.snapshotRepo.GetLatestBefore(ctx, orgID, city, area, today)
	if err != nil {
		return nil, err
	}

	snap := &models.MarketSnapshot{
		OrgID:             orgID,
		City:              city,
		Area:              area,
		SnapshotDate:      today,
		Trigger:           trigger,
		TotalProjects:     overview.TotalProjects,
		TotalUnits:        overview.TotalUnits,
		Pricing:           overview.Pricing,
		UnitTypeMix:       overview.UnitTypeMix,
		StatusMix:         overview.StatusMix,
		AmenityPrevalence: overview.AmenityPrevalence,
		Quality:           overview.Quality,
		Trend:             computeTrend(overview, prior),
		Fingerprint:       overview.Fingerprint,
	}

	if err := s.snapshotRepo.Upsert(ctx, snap); err != nil {
		return nil, err
	}

	s.logger.Info("snapshot stored",
		zap.String("city", city),
		zap.String("area", area),
		zap.Time("date", today),
		zap.String("trigger", trigger),
		zap.Bool("first", prior == nil))

	return snap, nil
}

// computeTrend diffs the current aggregate against the prior snapshot.
// A first-ever snapshot has all-zero deltas.
func computeTrend(current *models.MarketOverview, prior *models.MarketSnapshot) models.TrendDelta {
	if prior == nil {
		return models.TrendDelta{}
	}

	var trend models.TrendDelta

	trend.AvgPriceChangeAbs = current.Pricing.Avg - prior.Pricing.Avg
	if prior.Pricing.Avg > 0 {
		trend.AvgPriceChangePct = trend.AvgPriceChangeAbs / prior.Pricing.Avg * 100
	}

	// New supply is floored at zero; completions shrinking the market are
	// not "negative new supply". The signed movement stays visible in
	// TotalUnitsChangePct.
	if added := current.TotalUnits - prior.TotalUnits; added > 0 {
		trend.NewSupply = added
	}
	if prior.TotalUnits > 0 {
		trend.TotalUnitsChangePct = float64(current.TotalUnits-prior.TotalUnits) / float64(prior.TotalUnits) * 100
	}

	return trend
}

func (s *snapshotService) GetTrends(ctx context.Context, orgID uuid.UUID, city, area string, months int) (*models.TrendReport, error) {
	if months <= 0 {
		months = 6
	}

	from := truncateToDay(s.now()).AddDate(0, -months, 0)
	snaps, err := s.snapshotRepo.ListSince(ctx, orgID, city, area, from)
	if err != nil {
		return nil, err
	}

	report := &models.TrendReport{
		City:   city,
		Area:   area,
		Months: months,
	}

	if len(snaps) == 0 {
		report.Message = fmt.Sprintf("no snapshot history for the last %d months; trends accumulate as snapshots are generated", months)
		return report, nil
	}

	report.SufficientHistory = true
	report.Points = make([]models.TrendPoint, 0, len(snaps))
	for _, snap := range snaps {
		report.Points = append(report.Points, models.TrendPoint{
			Date:          snap.SnapshotDate,
			AvgPrice:      snap.Pricing.Avg,
			TotalUnits:    snap.TotalUnits,
			TotalProjects: snap.TotalProjects,
		})
	}

	latest := snaps[len(snaps)-1].Trend
	report.Latest = &latest

	return report, nil
}

// truncateToDay truncates a timestamp to UTC day granularity, the
// snapshot key's time component.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
