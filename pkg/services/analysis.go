package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/apperrors"
	"github.com/propfolio/market-engine/pkg/config"
	"github.com/propfolio/market-engine/pkg/llm"
	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/repositories"
	"github.com/propfolio/market-engine/pkg/stats"
)

// maxReasoningAttempts is a hard cap, not a backoff policy: the first
// attempt runs at the configured temperature, the second and final one at
// the deterministic-leaning fallback temperature.
const maxReasoningAttempts = 2

// AnalysisConfig tunes the recommendation orchestrator.
type AnalysisConfig struct {
	CacheTTL         time.Duration
	MaxCompetitors   int
	Temperature      float64
	RetryTemperature float64
}

// AnalysisConfigFromMarket derives the orchestrator tuning from the
// market configuration section.
func AnalysisConfigFromMarket(cfg *config.MarketConfig) AnalysisConfig {
	return AnalysisConfig{
		CacheTTL:         time.Duration(cfg.CacheTTLHours) * time.Hour,
		MaxCompetitors:   cfg.MaxCompetitors,
		Temperature:      cfg.Temperature,
		RetryTemperature: cfg.RetryTemperature,
	}
}

// AnalysisService orchestrates LLM-backed competitive analyses behind a
// freshness-checked cache. Per request:
// Requested -> CacheCheck -> (CacheHit | GenerateNew) -> Persisted -> Returned.
type AnalysisService interface {
	// GenerateAnalysis returns the cached analysis for (org, project,
	// analysisType) when it is neither time-expired nor invalidated by a
	// competitor-data change, and regenerates it otherwise.
	// forceRefresh bypasses the cache check unconditionally.
	GenerateAnalysis(ctx context.Context, orgID, projectID uuid.UUID, analysisType string, forceRefresh bool) (*models.AnalysisResult, error)
}

type analysisService struct {
	projectRepo    repositories.ProjectRepository
	competitorRepo repositories.CompetitorRepository
	overviewSvc    MarketOverviewService
	cache          repositories.AnalysisCache
	reasoning      llm.ReasoningClient
	cfg            AnalysisConfig
	now            func() time.Time
	logger         *zap.Logger
}

// NewAnalysisService creates the recommendation orchestrator. The
// reasoning client is injected so tests can substitute a deterministic
// stub; this service never builds transport clients itself.
func NewAnalysisService(
	projectRepo repositories.ProjectRepository,
	competitorRepo repositories.CompetitorRepository,
	overviewSvc MarketOverviewService,
	cache repositories.AnalysisCache,
	reasoning llm.ReasoningClient,
	cfg AnalysisConfig,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		projectRepo:    projectRepo,
		competitorRepo: competitorRepo,
		overviewSvc:    overviewSvc,
		cache:          cache,
		reasoning:      reasoning,
		cfg:            cfg,
		now:            time.Now,
		logger:         logger.Named("analysis"),
	}
}

func (s *analysisService) GenerateAnalysis(ctx context.Context, orgID, projectID uuid.UUID, analysisType string, forceRefresh bool) (*models.AnalysisResult, error) {
	if _, ok := analysisInstructions[analysisType]; !ok {
		return nil, fmt.Errorf("unknown analysis type %q", analysisType)
	}

	project, err := s.projectRepo.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasLocality() {
		return nil, apperrors.ErrMissingLocality
	}

	overview, err := s.overviewSvc.BuildOverview(ctx, orgID, project.City, project.Area)
	if err != nil {
		return nil, err
	}
	liveFingerprint := overview.Fingerprint

	if !forceRefresh {
		entry, err := s.cache.Get(ctx, orgID, projectID, analysisType)
		if err != nil {
			return nil, err
		}
		if s.cacheUsable(entry, liveFingerprint) {
			s.logger.Debug("analysis cache hit",
				zap.String("project_id", projectID.String()),
				zap.String("analysis_type", analysisType))
			return &models.AnalysisResult{Analysis: entry, FromCache: true}, nil
		}
	}

	entry, err := s.generate(ctx, orgID, project, analysisType, overview, liveFingerprint)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, entry, s.cfg.CacheTTL); err != nil {
		return nil, err
	}

	return &models.AnalysisResult{Analysis: entry, FromCache: false}, nil
}

// cacheUsable applies the full hit criteria: an entry exists, the wall
// clock is before its expiry, and the live competitor fingerprint matches
// the stored one. Staleness-by-data-change and staleness-by-time force
// regeneration identically.
func (s *analysisService) cacheUsable(entry *models.CachedAnalysis, liveFingerprint string) bool {
	if entry == nil {
		return false
	}
	if entry.Expired(s.now()) {
		return false
	}
	return entry.Fingerprint == liveFingerprint
}

func (s *analysisService) generate(
	ctx context.Context,
	orgID uuid.UUID,
	project *models.Project,
	analysisType string,
	overview *models.MarketOverview,
	liveFingerprint string,
) (*models.CachedAnalysis, error) {
	competitors, err := s.competitorRepo.TopByConfidence(ctx, orgID, project.City, project.Area, s.cfg.MaxCompetitors)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparable competitors: %w", err)
	}
	if len(competitors) == 0 {
		return nil, apperrors.ErrNoComparableData
	}

	filtered, dropped := filterPriceOutliers(competitors)

	userPrompt, err := buildUserPrompt(analysisType, project, overview, filtered)
	if err != nil {
		return nil, err
	}

	start := s.now()
	payload, attempts, err := s.complete(ctx, analysisType, userPrompt)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	generatedAt := s.now()
	entry := &models.CachedAnalysis{
		OrgID:        orgID,
		ProjectID:    project.ID,
		AnalysisType: analysisType,
		Payload:      *payload,
		Meta: models.GenerationMeta{
			QualityTier:     qualityTier(competitors, generatedAt),
			CompetitorCount: len(competitors),
			FreshCount:      freshCount(competitors, generatedAt),
			AvgConfidence:   avgConfidence(competitors),
			OutliersDropped: dropped,
			Attempts:        attempts,
			Model:           s.reasoning.GetModel(),
			LatencyMS:       latency.Milliseconds(),
		},
		Fingerprint: liveFingerprint,
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.Add(s.cfg.CacheTTL),
	}

	s.logger.Info("analysis generated",
		zap.String("project_id", project.ID.String()),
		zap.String("analysis_type", analysisType),
		zap.String("quality_tier", entry.Meta.QualityTier),
		zap.Int("competitors", len(competitors)),
		zap.Int("outliers_dropped", dropped),
		zap.Int("attempts", attempts),
		zap.Duration("latency", latency))

	return entry, nil
}

// complete calls the reasoning engine up to maxReasoningAttempts times.
// A call failure or a structured-decode failure triggers the retry; the
// final attempt's failure is terminal.
func (s *analysisService) complete(ctx context.Context, analysisType, userPrompt string) (*models.AnalysisPayload, int, error) {
	temperatures := []float64{s.cfg.Temperature, s.cfg.RetryTemperature}

	var lastErr error
	for attempt := 1; attempt <= maxReasoningAttempts; attempt++ {
		raw, err := s.reasoning.Complete(ctx, analysisSystemPrompt, userPrompt, temperatures[attempt-1])
		if err != nil {
			lastErr = err
			s.logger.Warn("reasoning call failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		payload, err := llm.ParseJSONResponse[models.AnalysisPayload](raw)
		if err == nil {
			err = validatePayload(analysisType, &payload)
		}
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", apperrors.ErrMalformedAnalysis, err)
			s.logger.Warn("reasoning response failed validation",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		return &payload, attempt, nil
	}

	return nil, maxReasoningAttempts, lastErr
}

// validatePayload enforces the per-type output contract before a cache
// write is accepted.
func validatePayload(analysisType string, p *models.AnalysisPayload) error {
	if p.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	if len(p.Recommendations) == 0 {
		return fmt.Errorf("missing recommendations")
	}
	for i, rec := range p.Recommendations {
		if rec.Action == "" {
			return fmt.Errorf("recommendation %d has no action", i)
		}
	}

	switch analysisType {
	case models.AnalysisTypePricing:
		if p.SuggestedPricePerAreaMin == nil || p.SuggestedPricePerAreaMax == nil {
			return fmt.Errorf("missing suggested price band")
		}
		if *p.SuggestedPricePerAreaMin > *p.SuggestedPricePerAreaMax {
			return fmt.Errorf("inverted suggested price band")
		}
	case models.AnalysisTypePositioning:
		if p.MarketPositioning == "" {
			return fmt.Errorf("missing market_positioning")
		}
	case models.AnalysisTypeLaunchStrategy:
		if p.LaunchWindow == "" {
			return fmt.Errorf("missing launch_window")
		}
	}

	return nil
}

// filterPriceOutliers drops competitors whose representative price falls
// outside the IQR fences of the price series, bounding the context handed
// to the reasoning engine so one bad listing cannot skew the advice.
// Records without a price are always kept.
func filterPriceOutliers(competitors []*models.Competitor) (kept []*models.Competitor, dropped int) {
	prices := priceSeries(competitors)
	lower, upper, ok := stats.OutlierBounds(prices)
	if !ok {
		return competitors, 0
	}

	kept = make([]*models.Competitor, 0, len(competitors))
	for _, c := range competitors {
		price := c.Pricing.PerAreaAvg
		if price > 0 && (price < lower || price > upper) {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

// qualityTier classifies the input data for response metadata. Tiers
// never gate generation.
func qualityTier(competitors []*models.Competitor, now time.Time) string {
	n := len(competitors)
	if n < 2 {
		return models.QualityTierVeryLow
	}

	fresh := freshCount(competitors, now)
	freshPct := float64(fresh) / float64(n) * 100
	conf := avgConfidence(competitors)

	switch {
	case n >= 5 && freshPct >= 70 && conf >= 60:
		return models.QualityTierHigh
	case n >= 3 && freshPct >= 40 && conf >= 40:
		return models.QualityTierMedium
	default:
		return models.QualityTierLow
	}
}

func freshCount(competitors []*models.Competitor, now time.Time) int {
	fresh := 0
	for _, c := range competitors {
		if now.Sub(c.CollectedAt) < freshWindow {
			fresh++
		}
	}
	return fresh
}

func avgConfidence(competitors []*models.Competitor) float64 {
	if len(competitors) == 0 {
		return 0
	}
	var sum float64
	for _, c := range competitors {
		sum += c.Confidence
	}
	return sum / float64(len(competitors))
}
