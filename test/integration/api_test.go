package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/safesignal/safesignal/config"
	"github.com/safesignal/safesignal/internal/api"
	"github.com/safesignal/safesignal/internal/logger"
	middlewares "github.com/safesignal/safesignal/internal/middleware"
	"github.com/safesignal/safesignal/internal/models"
	"github.com/safesignal/safesignal/internal/scoring"
	"github.com/safesignal/safesignal/internal/store"
)

// newRouter wires the full middleware stack around an in-memory store, the
// same shape main() builds minus Redis.
func newRouter(st *store.InMemoryStore) *chi.Mux {
	logger.Init("error", "text")

	cfg := config.ScoringConfig{
		SafeThreshold:    7.5,
		CautionThreshold: 4.0,
		IncidentRadiusKm: 20,
		ReportRadiusKm:   2,
		ReportWindowDays: 30,
	}
	scorer := scoring.NewScorer(st, st, st, cfg, clockwork.NewRealClock())

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS([]string{"*"}))
	r.Use(middlewares.RateLimit(nil))

	h := api.NewHandler(st, scorer, "test", "test-time", "test-commit")
	h.RegisterRoutes(r)
	return r
}

func TestHealthThroughFullStack(t *testing.T) {
	r := newRouter(store.NewInMemoryStore())

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
	}{
		{"Health Check", "/health", http.StatusOK},
		{"Readiness Check", "/v1/health/ready", http.StatusOK},
		{"Liveness Check", "/v1/health/live", http.StatusOK},
		{"Version Info", "/v1/version", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.endpoint, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Errorf("security headers missing")
			}
		})
	}
}

func TestAssessmentFlowThroughFullStack(t *testing.T) {
	st := store.NewInMemoryStore()
	r := newRouter(st)
	ctx := context.Background()

	if err := st.UpsertCountryRisks(ctx, []models.CountryRisk{
		{CountryCode: "AU", RiskScore: 9.9, Year: 2021, Source: models.RiskDataSource, LastUpdated: time.Now().UTC()},
	}); err != nil {
		t.Fatalf("seed risks: %v", err)
	}
	if err := st.UpsertIncidents(ctx, []models.Incident{
		{ID: "fire-1", Type: "Bush Fire", Severity: models.SeverityEmergencyWarning, Lat: -33.87, Lng: 151.21, Source: "itest"},
	}); err != nil {
		t.Fatalf("seed incidents: %v", err)
	}

	// Post a report through the API
	body := `{"type":"lighting","text":"no street lights","lat":-33.8688,"lng":151.2093}`
	req := httptest.NewRequest("POST", "/v1/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create report: %d %s", w.Code, w.Body.String())
	}

	// Assess the same spot; the emergency incident forces Unsafe
	req = httptest.NewRequest("GET", "/v1/safety?lat=-33.8688&lng=151.2093&country=AU", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("safety: %d %s", w.Code, w.Body.String())
	}

	var assessment models.Assessment
	if err := json.Unmarshal(w.Body.Bytes(), &assessment); err != nil {
		t.Fatalf("decode assessment: %v", err)
	}
	if assessment.Safety.Label != "Unsafe" {
		t.Fatalf("expected Unsafe, got %q", assessment.Safety.Label)
	}
	if len(assessment.Incidents) != 1 || assessment.Incidents[0].ID != "fire-1" {
		t.Fatalf("expected fire-1 nearby, got %+v", assessment.Incidents)
	}
	if assessment.Community == nil || assessment.Community.Total != 1 {
		t.Fatalf("expected one community report, got %+v", assessment.Community)
	}
}
