package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParsePathUUID parses a UUID path value, writing a 400 response on
// failure. The second return value reports success.
func ParsePathUUID(w http.ResponseWriter, r *http.Request, name string, logger *zap.Logger) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Debug("invalid path id", zap.String("param", name), zap.String("value", raw))
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "invalid "+name); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// RequireLocality reads the city/area query parameters, writing a 400
// response when either is missing.
func RequireLocality(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (city, area string, ok bool) {
	city = r.URL.Query().Get("city")
	area = r.URL.Query().Get("area")
	if city == "" || area == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_locality_params", "city and area query parameters are required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", "", false
	}
	return city, area, true
}
