package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/propfolio/market-engine/pkg/apperrors"
	"github.com/propfolio/market-engine/pkg/database"
	"github.com/propfolio/market-engine/pkg/models"
)

// CompetitorRepository provides data access for competitor records.
// Records are soft-deleted only: Deactivate clears is_active so historical
// snapshots stay reproducible.
type CompetitorRepository interface {
	Create(ctx context.Context, c *models.Competitor) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Competitor, error)
	// FindActive returns active records whose locality matches the given
	// city and area case-insensitively, newest-verified first.
	FindActive(ctx context.Context, orgID uuid.UUID, city, area string) ([]*models.Competitor, error)
	// TopByConfidence returns up to limit active locality records ordered
	// by confidence descending.
	TopByConfidence(ctx context.Context, orgID uuid.UUID, city, area string, limit int) ([]*models.Competitor, error)
	// Verify refreshes a record's confidence and collection timestamp
	// after re-verification.
	Verify(ctx context.Context, orgID, id uuid.UUID, confidence float64, collectedAt time.Time) error
	Deactivate(ctx context.Context, orgID, id uuid.UUID) error
}

type competitorRepository struct {
	db *database.DB
}

// NewCompetitorRepository creates a new CompetitorRepository.
func NewCompetitorRepository(db *database.DB) CompetitorRepository {
	return &competitorRepository{db: db}
}

var _ CompetitorRepository = (*competitorRepository)(nil)

const competitorColumns = `
	id, org_id, name, COALESCE(developer, ''), city, area, latitude, longitude,
	status, pricing, unit_mix, amenities, data_source, collected_at,
	confidence, is_active, created_at, updated_at`

func (r *competitorRepository) Create(ctx context.Context, c *models.Competitor) error {
	now := time.Now()

	query := `
		INSERT INTO market_competitors (
			org_id, name, developer, city, area, latitude, longitude,
			status, pricing, unit_mix, amenities, data_source, collected_at,
			confidence, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, true, $15, $15)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		c.OrgID,
		c.Name,
		nullString(c.Developer),
		c.City,
		c.Area,
		c.Latitude,
		c.Longitude,
		c.Status,
		jsonbValue(c.Pricing),
		jsonbValue(c.UnitMix),
		jsonbValue(c.Amenities),
		c.DataSource,
		c.CollectedAt,
		c.Confidence,
		now,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create competitor: %w", err)
	}
	c.IsActive = true

	return nil
}

func (r *competitorRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + `
		FROM market_competitors
		WHERE id = $1 AND org_id = $2`

	row := r.db.QueryRow(ctx, query, id, orgID)
	c, err := scanCompetitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitor: %w", err)
	}
	return c, nil
}

func (r *competitorRepository) FindActive(ctx context.Context, orgID uuid.UUID, city, area string) ([]*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + `
		FROM market_competitors
		WHERE org_id = $1 AND is_active = true
		  AND city ILIKE $2 AND area ILIKE $3
		ORDER BY collected_at DESC`

	return r.queryCompetitors(ctx, query, orgID, city, area)
}

func (r *competitorRepository) TopByConfidence(ctx context.Context, orgID uuid.UUID, city, area string, limit int) ([]*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + `
		FROM market_competitors
		WHERE org_id = $1 AND is_active = true
		  AND city ILIKE $2 AND area ILIKE $3
		ORDER BY confidence DESC, collected_at DESC
		LIMIT $4`

	return r.queryCompetitors(ctx, query, orgID, city, area, limit)
}

func (r *competitorRepository) Verify(ctx context.Context, orgID, id uuid.UUID, confidence float64, collectedAt time.Time) error {
	query := `
		UPDATE market_competitors
		SET confidence = $3, collected_at = $4, updated_at = now()
		WHERE id = $1 AND org_id = $2`

	tag, err := r.db.Exec(ctx, query, id, orgID, confidence, collectedAt)
	if err != nil {
		return fmt.Errorf("failed to verify competitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *competitorRepository) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE market_competitors
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND org_id = $2 AND is_active = true`

	tag, err := r.db.Exec(ctx, query, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to deactivate competitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *competitorRepository) queryCompetitors(ctx context.Context, query string, args ...any) ([]*models.Competitor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer rows.Close()

	var result []*models.Competitor
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate competitors: %w", err)
	}
	return result, nil
}

func scanCompetitor(row pgx.Row) (*models.Competitor, error) {
	var c models.Competitor
	var pricing, unitMix, amenities []byte

	err := row.Scan(
		&c.ID, &c.OrgID, &c.Name, &c.Developer, &c.City, &c.Area,
		&c.Latitude, &c.Longitude, &c.Status, &pricing, &unitMix, &amenities,
		&c.DataSource, &c.CollectedAt, &c.Confidence, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSONB(pricing, &c.Pricing); err != nil {
		return nil, fmt.Errorf("bad pricing json: %w", err)
	}
	if err := scanJSONB(unitMix, &c.UnitMix); err != nil {
		return nil, fmt.Errorf("bad unit_mix json: %w", err)
	}
	if err := scanJSONB(amenities, &c.Amenities); err != nil {
		return nil, fmt.Errorf("bad amenities json: %w", err)
	}

	return &c, nil
}
