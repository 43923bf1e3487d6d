package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/propfolio/market-engine/pkg/database"
	"github.com/propfolio/market-engine/pkg/models"
)

// SnapshotRepository persists daily market snapshots. The invariant "at
// most one snapshot per (org, city, area, calendar day)" is enforced by a
// unique index plus ON CONFLICT upsert, which makes snapshot generation
// safely retryable from concurrent triggers.
type SnapshotRepository interface {
	// Upsert inserts the snapshot, or overwrites the existing row for the
	// same locality and day. Last writer wins.
	Upsert(ctx context.Context, snap *models.MarketSnapshot) error
	// GetLatestBefore returns the most recent snapshot strictly before the
	// given day, or nil if none exists.
	GetLatestBefore(ctx context.Context, orgID uuid.UUID, city, area string, day time.Time) (*models.MarketSnapshot, error)
	// ListSince returns snapshots on or after the given day, ascending.
	ListSince(ctx context.Context, orgID uuid.UUID, city, area string, from time.Time) ([]*models.MarketSnapshot, error)
}

type snapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *database.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

var _ SnapshotRepository = (*snapshotRepository)(nil)

const snapshotColumns = `
	id, org_id, city, area, snapshot_date, trigger_source, total_projects,
	total_units, pricing, unit_type_mix, status_mix, amenity_prevalence,
	quality, trend, fingerprint, created_at, updated_at`

func (r *snapshotRepository) Upsert(ctx context.Context, snap *models.MarketSnapshot) error {
	query := `
		INSERT INTO market_snapshots (
			org_id, city, area, snapshot_date, trigger_source,
			total_projects, total_units, pricing, unit_type_mix, status_mix,
			amenity_prevalence, quality, trend, fingerprint, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		ON CONFLICT (org_id, lower(city), lower(area), snapshot_date) DO UPDATE SET
			trigger_source = EXCLUDED.trigger_source,
			total_projects = EXCLUDED.total_projects,
			total_units = EXCLUDED.total_units,
			pricing = EXCLUDED.pricing,
			unit_type_mix = EXCLUDED.unit_type_mix,
			status_mix = EXCLUDED.status_mix,
			amenity_prevalence = EXCLUDED.amenity_prevalence,
			quality = EXCLUDED.quality,
			trend = EXCLUDED.trend,
			fingerprint = EXCLUDED.fingerprint,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		snap.OrgID,
		snap.City,
		snap.Area,
		snap.SnapshotDate,
		snap.Trigger,
		snap.TotalProjects,
		snap.TotalUnits,
		jsonbValue(snap.Pricing),
		jsonbValue(snap.UnitTypeMix),
		jsonbValue(snap.StatusMix),
		jsonbValue(snap.AmenityPrevalence),
		jsonbValue(snap.Quality),
		jsonbValue(snap.Trend),
		snap.Fingerprint,
	).Scan(&snap.ID, &snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

func (r *snapshotRepository) GetLatestBefore(ctx context.Context, orgID uuid.UUID, city, area string, day time.Time) (*models.MarketSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM market_snapshots
		WHERE org_id = $1 AND city ILIKE $2 AND area ILIKE $3
		  AND snapshot_date < $4
		ORDER BY snapshot_date DESC
		LIMIT 1`

	row := r.db.QueryRow(ctx, query, orgID, city, area, day)
	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prior snapshot: %w", err)
	}
	return snap, nil
}

func (r *snapshotRepository) ListSince(ctx context.Context, orgID uuid.UUID, city, area string, from time.Time) ([]*models.MarketSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM market_snapshots
		WHERE org_id = $1 AND city ILIKE $2 AND area ILIKE $3
		  AND snapshot_date >= $4
		ORDER BY snapshot_date ASC`

	rows, err := r.db.Query(ctx, query, orgID, city, area, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var result []*models.MarketSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return result, nil
}

func scanSnapshot(row pgx.Row) (*models.MarketSnapshot, error) {
	var s models.MarketSnapshot
	var pricing, unitTypeMix, statusMix, amenities, quality, trend []byte

	err := row.Scan(
		&s.ID, &s.OrgID, &s.City, &s.Area, &s.SnapshotDate, &s.Trigger,
		&s.TotalProjects, &s.TotalUnits, &pricing, &unitTypeMix, &statusMix,
		&amenities, &quality, &trend, &s.Fingerprint, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSONB(pricing, &s.Pricing); err != nil {
		return nil, fmt.Errorf("bad pricing json: %w", err)
	}
	if err := scanJSONB(unitTypeMix, &s.UnitTypeMix); err != nil {
		return nil, fmt.Errorf("bad unit_type_mix json: %w", err)
	}
	if err := scanJSONB(statusMix, &s.StatusMix); err != nil {
		return nil, fmt.Errorf("bad status_mix json: %w", err)
	}
	if err := scanJSONB(amenities, &s.AmenityPrevalence); err != nil {
		return nil, fmt.Errorf("bad amenity_prevalence json: %w", err)
	}
	if err := scanJSONB(quality, &s.Quality); err != nil {
		return nil, fmt.Errorf("bad quality json: %w", err)
	}
	if err := scanJSONB(trend, &s.Trend); err != nil {
		return nil, fmt.Errorf("bad trend json: %w", err)
	}

	return &s, nil
}
