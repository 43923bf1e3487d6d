package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/propfolio/market-engine/pkg/models"
)

// AnalysisCache stores cached reasoning-engine outputs keyed by
// (org, project, analysis type). Redis SET with a TTL gives both the
// upsert-by-unique-key discipline (concurrent regenerations converge on
// one entry) and passive time-based expiry (an entry past its TTL is
// absent on read). Fingerprint-based staleness is checked by the
// orchestrator, not here.
type AnalysisCache interface {
	// Get returns the cached entry, or nil on a miss (including passive
	// expiry).
	Get(ctx context.Context, orgID, projectID uuid.UUID, analysisType string) (*models.CachedAnalysis, error)
	// Put upserts the entry with the given TTL.
	Put(ctx context.Context, entry *models.CachedAnalysis, ttl time.Duration) error
}

type analysisCache struct {
	client *redis.Client
}

// NewAnalysisCache creates a Redis-backed analysis cache. A nil client is
// tolerated: every Get misses and every Put is a no-op, so the engine
// degrades to regenerating on each request.
func NewAnalysisCache(client *redis.Client) AnalysisCache {
	return &analysisCache{client: client}
}

var _ AnalysisCache = (*analysisCache)(nil)

func cacheKey(orgID, projectID uuid.UUID, analysisType string) string {
	return fmt.Sprintf("market:analysis:%s:%s:%s", orgID, projectID, analysisType)
}

func (c *analysisCache) Get(ctx context.Context, orgID, projectID uuid.UUID, analysisType string) (*models.CachedAnalysis, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(orgID, projectID, analysisType)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis cache: %w", err)
	}

	var entry models.CachedAnalysis
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("bad cached analysis json: %w", err)
	}
	return &entry, nil
}

func (c *analysisCache) Put(ctx context.Context, entry *models.CachedAnalysis, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cached analysis: %w", err)
	}

	key := cacheKey(entry.OrgID, entry.ProjectID, entry.AnalysisType)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write analysis cache: %w", err)
	}
	return nil
}
