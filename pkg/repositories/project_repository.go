package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/propfolio/market-engine/pkg/apperrors"
	"github.com/propfolio/market-engine/pkg/database"
	"github.com/propfolio/market-engine/pkg/models"
)

// ProjectRepository resolves the minimal project context (locality) the
// analysis orchestrator needs.
type ProjectRepository interface {
	GetByID(ctx context.Context, orgID, projectID uuid.UUID) (*models.Project, error)
}

type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

var _ ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) GetByID(ctx context.Context, orgID, projectID uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, org_id, name, COALESCE(city, ''), COALESCE(area, ''), status, created_at, updated_at
		FROM market_projects
		WHERE id = $1 AND org_id = $2`

	var p models.Project
	err := r.db.QueryRow(ctx, query, projectID, orgID).Scan(
		&p.ID, &p.OrgID, &p.Name, &p.City, &p.Area, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}
