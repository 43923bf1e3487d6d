package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/repositories"
)

// CreateCompetitorRequest for POST /competitors
type CreateCompetitorRequest struct {
	Name        string                `json:"name"`
	Developer   string                `json:"developer,omitempty"`
	City        string                `json:"city"`
	Area        string                `json:"area"`
	Latitude    *float64              `json:"latitude,omitempty"`
	Longitude   *float64              `json:"longitude,omitempty"`
	Status      string                `json:"status"`
	Pricing     models.PricingInfo    `json:"pricing"`
	UnitMix     []models.UnitMixEntry `json:"unit_mix,omitempty"`
	Amenities   []string              `json:"amenities,omitempty"`
	DataSource  string                `json:"data_source,omitempty"`
	CollectedAt *time.Time            `json:"collected_at,omitempty"`
	Confidence  float64               `json:"confidence"`
}

// VerifyCompetitorRequest for POST /competitors/{cid}/verify
type VerifyCompetitorRequest struct {
	Confidence float64 `json:"confidence"`
}

// CompetitorHandler handles competitor record lifecycle requests:
// creation, re-verification, and soft deletion.
type CompetitorHandler struct {
	competitorRepo repositories.CompetitorRepository
	logger         *zap.Logger
}

// NewCompetitorHandler creates a new competitor handler.
func NewCompetitorHandler(competitorRepo repositories.CompetitorRepository, logger *zap.Logger) *CompetitorHandler {
	return &CompetitorHandler{competitorRepo: competitorRepo, logger: logger}
}

// RegisterRoutes registers the competitor handler's routes on the given mux.
func (h *CompetitorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orgs/{oid}/competitors", h.Create)
	mux.HandleFunc("POST /api/orgs/{oid}/competitors/{cid}/verify", h.Verify)
	mux.HandleFunc("DELETE /api/orgs/{oid}/competitors/{cid}", h.Deactivate)
}

// Create handles POST /api/orgs/{oid}/competitors
func (h *CompetitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}

	var req CreateCompetitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	now := time.Now()
	collectedAt := now
	if req.CollectedAt != nil {
		collectedAt = *req.CollectedAt
	}
	dataSource := req.DataSource
	if dataSource == "" {
		dataSource = models.SourceManual
	}

	competitor := &models.Competitor{
		OrgID:       orgID,
		Name:        req.Name,
		Developer:   req.Developer,
		City:        req.City,
		Area:        req.Area,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      req.Status,
		Pricing:     req.Pricing,
		UnitMix:     req.UnitMix,
		Amenities:   req.Amenities,
		DataSource:  dataSource,
		CollectedAt: collectedAt,
		Confidence:  req.Confidence,
	}

	if err := competitor.Validate(now); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_competitor", err.Error())
		return
	}

	if err := h.competitorRepo.Create(r.Context(), competitor); err != nil {
		h.logger.Error("Failed to create competitor", zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, competitor)
}

// Verify handles POST /api/orgs/{oid}/competitors/{cid}/verify
func (h *CompetitorHandler) Verify(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}
	competitorID, ok := ParsePathUUID(w, r, "cid", h.logger)
	if !ok {
		return
	}

	var req VerifyCompetitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Confidence < 0 || req.Confidence > 100 {
		h.writeError(w, http.StatusBadRequest, "invalid_confidence", "confidence must be within [0,100]")
		return
	}

	if err := h.competitorRepo.Verify(r.Context(), orgID, competitorID, req.Confidence, time.Now()); err != nil {
		h.logger.Error("Failed to verify competitor",
			zap.String("competitor_id", competitorID.String()),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Deactivate handles DELETE /api/orgs/{oid}/competitors/{cid}
// Records are soft-deleted so historical snapshots stay reproducible.
func (h *CompetitorHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}
	competitorID, ok := ParsePathUUID(w, r, "cid", h.logger)
	if !ok {
		return
	}

	if err := h.competitorRepo.Deactivate(r.Context(), orgID, competitorID); err != nil {
		h.logger.Error("Failed to deactivate competitor",
			zap.String("competitor_id", competitorID.String()),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CompetitorHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *CompetitorHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *CompetitorHandler) writeServiceError(w http.ResponseWriter, err error) {
	if werr := ServiceError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}
