package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/propfolio/market-engine/pkg/models"
	"github.com/propfolio/market-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// GenerateSnapshotRequest for POST /market/snapshots
type GenerateSnapshotRequest struct {
	City string `json:"city"`
	Area string `json:"area"`
}

// GenerateSnapshotResponse wraps the snapshot outcome. Snapshot is null
// with an explanatory message when the locality has no data - that is a
// successful response, not an error.
type GenerateSnapshotResponse struct {
	Snapshot *models.MarketSnapshot `json:"snapshot"`
	Message  string                 `json:"message,omitempty"`
}

// GenerateAnalysisRequest for POST /projects/{pid}/analysis
type GenerateAnalysisRequest struct {
	AnalysisType string `json:"analysis_type"`
	ForceRefresh bool   `json:"force_refresh,omitempty"`
}

// ============================================================================
// Handler
// ============================================================================

// MarketHandler exposes the market intelligence operations.
type MarketHandler struct {
	overviewSvc     services.MarketOverviewService
	snapshotSvc     services.SnapshotService
	demandSupplySvc services.DemandSupplyService
	analysisSvc     services.AnalysisService
	logger          *zap.Logger
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(
	overviewSvc services.MarketOverviewService,
	snapshotSvc services.SnapshotService,
	demandSupplySvc services.DemandSupplyService,
	analysisSvc services.AnalysisService,
	logger *zap.Logger,
) *MarketHandler {
	return &MarketHandler{
		overviewSvc:     overviewSvc,
		snapshotSvc:     snapshotSvc,
		demandSupplySvc: demandSupplySvc,
		analysisSvc:     analysisSvc,
		logger:          logger,
	}
}

// RegisterRoutes registers the market handler's routes on the given mux.
func (h *MarketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/orgs/{oid}/market/overview", h.Overview)
	mux.HandleFunc("POST /api/orgs/{oid}/market/snapshots", h.GenerateSnapshot)
	mux.HandleFunc("GET /api/orgs/{oid}/market/trends", h.Trends)
	mux.HandleFunc("GET /api/orgs/{oid}/market/demand-supply", h.DemandSupply)
	mux.HandleFunc("POST /api/orgs/{oid}/projects/{pid}/analysis", h.GenerateAnalysis)
}

// Overview handles GET /api/orgs/{oid}/market/overview?city=&area=
func (h *MarketHandler) Overview(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}
	city, area, ok := RequireLocality(w, r, h.logger)
	if !ok {
		return
	}

	overview, err := h.overviewSvc.BuildOverview(r.Context(), orgID, city, area)
	if err != nil {
		h.logger.Error("Failed to build market overview",
			zap.String("city", city),
			zap.String("area", area),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, overview)
}

// GenerateSnapshot handles POST /api/orgs/{oid}/market/snapshots
func (h *MarketHandler) GenerateSnapshot(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}

	var req GenerateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.City == "" || req.Area == "" {
		h.writeError(w, http.StatusBadRequest, "missing_locality_params", "city and area are required")
		return
	}

	snap, err := h.snapshotSvc.GenerateSnapshot(r.Context(), orgID, req.City, req.Area, models.TriggerManual)
	if err != nil {
		h.logger.Error("Failed to generate snapshot",
			zap.String("city", req.City),
			zap.String("area", req.Area),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	resp := GenerateSnapshotResponse{Snapshot: snap}
	if snap == nil {
		resp.Message = "no competitor data for this locality; nothing to snapshot"
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Trends handles GET /api/orgs/{oid}/market/trends?city=&area=&months=
func (h *MarketHandler) Trends(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}
	city, area, ok := RequireLocality(w, r, h.logger)
	if !ok {
		return
	}

	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_months", "months must be a positive integer")
			return
		}
		months = parsed
	}

	report, err := h.snapshotSvc.GetTrends(r.Context(), orgID, city, area, months)
	if err != nil {
		h.logger.Error("Failed to read trends",
			zap.String("city", city),
			zap.String("area", area),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// DemandSupply handles GET /api/orgs/{oid}/market/demand-supply?city=&area=
func (h *MarketHandler) DemandSupply(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}
	city, area, ok := RequireLocality(w, r, h.logger)
	if !ok {
		return
	}

	report, err := h.demandSupplySvc.Analyze(r.Context(), orgID, city, area)
	if err != nil {
		h.logger.Error("Failed to analyze demand/supply",
			zap.String("city", city),
			zap.String("area", area),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// GenerateAnalysis handles POST /api/orgs/{oid}/projects/{pid}/analysis
func (h *MarketHandler) GenerateAnalysis(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParsePathUUID(w, r, "oid", h.logger)
	if !ok {
		return
	}
	projectID, ok := ParsePathUUID(w, r, "pid", h.logger)
	if !ok {
		return
	}

	var req GenerateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = models.AnalysisTypePricing
	}

	result, err := h.analysisSvc.GenerateAnalysis(r.Context(), orgID, projectID, req.AnalysisType, req.ForceRefresh)
	if err != nil {
		h.logger.Error("Failed to generate analysis",
			zap.String("project_id", projectID.String()),
			zap.String("analysis_type", req.AnalysisType),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *MarketHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *MarketHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *MarketHandler) writeServiceError(w http.ResponseWriter, err error) {
	if werr := ServiceError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}
