package smoke

import (
	"net/http/httptest"
	"testing"

	chi "github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/safesignal/safesignal/config"
	"github.com/safesignal/safesignal/internal/api"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/scoring"
	"github.com/safesignal/safesignal/internal/store"
)

func TestHealthAndSafetySmoke(t *testing.T) {
	logger.Init("error", "text")

	st := store.NewInMemoryStore()
	scorer := scoring.NewScorer(st, st, st, config.ScoringConfig{
		SafeThreshold:    7.5,
		CautionThreshold: 4.0,
		IncidentRadiusKm: 20,
		ReportRadiusKm:   2,
		ReportWindowDays: 30,
	}, clockwork.NewRealClock())
	h := api.NewHandler(st, scorer, "dev", "now", "git")
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/health", nil))
	if rec.Code != 200 {
		t.Fatalf("/v1/health %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, httptest.NewRequest("GET", "/v1/safety?lat=-33.87&lng=151.21", nil))
	if rec2.Code != 200 {
		t.Fatalf("/v1/safety %d", rec2.Code)
	}

	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, httptest.NewRequest("GET", "/v1/incidents", nil))
	if rec3.Code != 200 {
		t.Fatalf("/v1/incidents %d", rec3.Code)
	}
}
