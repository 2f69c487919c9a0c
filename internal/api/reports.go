package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/safesignal/safesignal/internal/geo"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/metrics"
	"github.com/safesignal/safesignal/internal/models"
)

// Defaults for the GET /v1/reports listing.
const (
	defaultReportWindowDays = 30
	defaultReportRadiusKm   = 2.0
	defaultReportLimit      = 50
	maxReportLimit          = 500
)

// createReportRequest is the POST /v1/reports body
type createReportRequest struct {
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	AreaCode *string  `json:"areaCode"`
}

// createReportHandler handles POST /v1/reports
func (h *Handler) createReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := validateReportRequest(req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := models.CommunityReport{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Text:      req.Text,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		AreaCode:  req.AreaCode,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateReport(ctx, report); err != nil {
		logger.WithContext(ctx).Error("Failed to create report", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	metrics.RecordReportCreated(report.Type)
	h.writeJSONResponse(w, http.StatusCreated, report)
}

// getReportsHandler handles GET /v1/reports. Reports are a local signal, so
// lat/lng are required and results are filtered to a small radius, newest
// first.
func (h *Handler) getReportsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	lat, lng, err := parseCoordinates(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query()

	radiusKm := defaultReportRadiusKm
	if raw := query.Get("radiusKm"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 || radiusKm > 500 {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "radiusKm must be a number between 0 and 500")
			return
		}
	}

	days := defaultReportWindowDays
	if raw := query.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	limit := defaultReportLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxReportLimit {
			h.writeErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxReportLimit))
			return
		}
		limit = parsed
	}

	reports, err := h.store.GetRecentReports(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query reports", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	var items []models.CommunityReport
	for _, rep := range reports {
		if geo.HaversineKm(origin, geo.Point{Lat: rep.Lat, Lng: rep.Lng}) > radiusKm {
			continue
		}
		items = append(items, rep)
		if len(items) == limit {
			break
		}
	}

	response := map[string]interface{}{
		"items":     items,
		"count":     len(items),
		"timestamp": now,
	}
	h.writeJSONResponse(w, http.StatusOK, response)
}

func validateReportRequest(req createReportRequest) error {
	if !models.ValidReportType(req.Type) {
		return fmt.Errorf("invalid report type: %s", req.Type)
	}
	if len(req.Text) > models.MaxReportTextLen {
		return fmt.Errorf("text exceeds %d characters", models.MaxReportTextLen)
	}
	if req.Lat == nil || req.Lng == nil {
		return fmt.Errorf("lat and lng are required")
	}
	if math.IsNaN(*req.Lat) || math.IsInf(*req.Lat, 0) || *req.Lat < -90 || *req.Lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if math.IsNaN(*req.Lng) || math.IsInf(*req.Lng, 0) || *req.Lng < -180 || *req.Lng > 180 {
		return fmt.Errorf("lng must be between -180 and 180")
	}
	return nil
}
