package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/propfolio/market-engine/pkg/apperrors"
	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/repositories"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeCompetitorRepo struct {
	records []*models.Competitor
	findErr error
}

var _ repositories.CompetitorRepository = (*fakeCompetitorRepo)(nil)

func (f *fakeCompetitorRepo) Create(ctx context.Context, c *models.Competitor) error {
	c.ID = uuid.New()
	c.IsActive = true
	f.records = append(f.records, c)
	return nil
}

func (f *fakeCompetitorRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Competitor, error) {
	for _, r := range f.records {
		if r.ID == id && r.OrgID == orgID {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeCompetitorRepo) FindActive(ctx context.Context, orgID uuid.UUID, city, area string) ([]*models.Competitor, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var result []*models.Competitor
	for _, r := range f.records {
		if r.OrgID == orgID && r.IsActive &&
			strings.EqualFold(r.City, city) && strings.EqualFold(r.Area, area) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeCompetitorRepo) TopByConfidence(ctx context.Context, orgID uuid.UUID, city, area string, limit int) ([]*models.Competitor, error) {
	result, err := f.FindActive(ctx, orgID, city, area)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Confidence > result[j].Confidence
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeCompetitorRepo) Verify(ctx context.Context, orgID, id uuid.UUID, confidence float64, collectedAt time.Time) error {
	r, err := f.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	r.Confidence = confidence
	r.CollectedAt = collectedAt
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCompetitorRepo) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	r, err := f.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	r.IsActive = false
	return nil
}

type fakeSnapshotRepo struct {
	snaps   map[string]*models.MarketSnapshot
	upserts int
}

var _ repositories.SnapshotRepository = (*fakeSnapshotRepo)(nil)

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snaps: map[string]*models.MarketSnapshot{}}
}

func snapKey(orgID uuid.UUID, city, area string, day time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", orgID, strings.ToLower(city), strings.ToLower(area), day.Format("2006-01-02"))
}

func (f *fakeSnapshotRepo) Upsert(ctx context.Context, snap *models.MarketSnapshot) error {
	f.upserts++
	key := snapKey(snap.OrgID, snap.City, snap.Area, snap.SnapshotDate)
	if existing, ok := f.snaps[key]; ok {
		snap.ID = existing.ID
	} else {
		snap.ID = uuid.New()
	}
	stored := *snap
	f.snaps[key] = &stored
	return nil
}

func (f *fakeSnapshotRepo) GetLatestBefore(ctx context.Context, orgID uuid.UUID, city, area string, day time.Time) (*models.MarketSnapshot, error) {
	var latest *models.MarketSnapshot
	for _, s := range f.snaps {
		if s.OrgID != orgID || !strings.EqualFold(s.City, city) || !strings.EqualFold(s.Area, area) {
			continue
		}
		if !s.SnapshotDate.Before(day) {
			continue
		}
		if latest == nil || s.SnapshotDate.After(latest.SnapshotDate) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeSnapshotRepo) ListSince(ctx context.Context, orgID uuid.UUID, city, area string, from time.Time) ([]*models.MarketSnapshot, error) {
	var result []*models.MarketSnapshot
	for _, s := range f.snaps {
		if s.OrgID != orgID || !strings.EqualFold(s.City, city) || !strings.EqualFold(s.Area, area) {
			continue
		}
		if s.SnapshotDate.Before(from) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SnapshotDate.Before(result[j].SnapshotDate)
	})
	return result, nil
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*models.Project
}

var _ repositories.ProjectRepository = (*fakeProjectRepo)(nil)

func (f *fakeProjectRepo) GetByID(ctx context.Context, orgID, projectID uuid.UUID) (*models.Project, error) {
	p, ok := f.projects[projectID]
	if !ok || p.OrgID != orgID {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

type fakeAnalysisCache struct {
	entries map[string]*models.CachedAnalysis
	puts    int
}

var _ repositories.AnalysisCache = (*fakeAnalysisCache)(nil)

func newFakeAnalysisCache() *fakeAnalysisCache {
	return &fakeAnalysisCache{entries: map[string]*models.CachedAnalysis{}}
}

func analysisKey(orgID, projectID uuid.UUID, analysisType string) string {
	return fmt.Sprintf("%s|%s|%s", orgID, projectID, analysisType)
}

func (f *fakeAnalysisCache) Get(ctx context.Context, orgID, projectID uuid.UUID, analysisType string) (*models.CachedAnalysis, error) {
	return f.entries[analysisKey(orgID, projectID, analysisType)], nil
}

func (f *fakeAnalysisCache) Put(ctx context.Context, entry *models.CachedAnalysis, ttl time.Duration) error {
	f.puts++
	stored := *entry
	f.entries[analysisKey(entry.OrgID, entry.ProjectID, entry.AnalysisType)] = &stored
	return nil
}

// ============================================================================
// Record builders
// ============================================================================

func testCompetitor(orgID uuid.UUID, name string, avgPrice float64, collectedAt time.Time) *models.Competitor {
	return &models.Competitor{
		ID:          uuid.New(),
		OrgID:       orgID,
		Name:        name,
		City:        "Pune",
		Area:        "Baner",
		Status:      models.StatusUnderConstruction,
		Pricing:     models.PricingInfo{PerAreaAvg: avgPrice, PerAreaMin: avgPrice * 0.9, PerAreaMax: avgPrice * 1.1},
		DataSource:  models.SourceManual,
		CollectedAt: collectedAt,
		Confidence:  80,
		IsActive:    true,
		UpdatedAt:   collectedAt,
	}
}
