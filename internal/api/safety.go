package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/safesignal/safesignal/internal/geo"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/scoring"
)

// getSafetyHandler handles GET /v1/safety?lat=&lng=&country=
func (h *Handler) getSafetyHandler(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseCoordinates(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	assessment := h.scorer.Assess(r.Context(), scoring.Request{
		Lat:         lat,
		Lng:         lng,
		CountryCode: r.URL.Query().Get("country"),
	})

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, assessment)
}

// getIncidentsHandler handles GET /v1/incidents. Without coordinates it
// returns the full active working set; with lat/lng it returns the nearby
// projection used by the scorer, honoring an optional radiusKm.
func (h *Handler) getIncidentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	incidents, err := h.store.GetActiveIncidents(ctx, now.Unix())
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query incidents", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	query := r.URL.Query()
	if query.Get("lat") == "" && query.Get("lng") == "" {
		response := map[string]interface{}{
			"data":      incidents,
			"count":     len(incidents),
			"timestamp": now,
		}
		w.Header().Set("Cache-Control", "public, max-age=60")
		h.writeJSONResponse(w, http.StatusOK, response)
		return
	}

	lat, lng, err := parseCoordinates(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	radiusKm := 20.0
	if raw := query.Get("radiusKm"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 || radiusKm > 500 {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "radiusKm must be a number between 0 and 500")
			return
		}
	}

	nearby := scoring.NearbyIncidents(
		geo.Point{Lat: lat, Lng: lng},
		incidents,
		radiusKm,
		now.Unix(),
	)

	response := map[string]interface{}{
		"data":      nearby,
		"count":     len(nearby),
		"timestamp": now,
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, response)
}

// parseCoordinates validates the lat/lng query parameters. Both are
// required, must parse as finite floats and must be in range.
func parseCoordinates(r *http.Request) (float64, float64, error) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		return 0, 0, fmt.Errorf("lat and lng are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, fmt.Errorf("invalid lat: %s", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, fmt.Errorf("invalid lng: %s", lngStr)
	}

	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("lat must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("lng must be between -180 and 180")
	}

	return lat, lng, nil
}
