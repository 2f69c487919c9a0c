package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safesignal/safesignal/config"
	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/models"
)

type fakeRisks struct {
	rec *models.CountryRisk
	err error
}

func (f fakeRisks) GetCountryRisk(ctx context.Context, code string) (*models.CountryRisk, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rec == nil || f.rec.CountryCode != code {
		return nil, apperrors.ErrNotFound
	}
	return f.rec, nil
}

type fakeIncidents struct {
	list []models.Incident
	err  error
}

func (f fakeIncidents) GetActiveIncidents(ctx context.Context, nowEpoch int64) ([]models.Incident, error) {
	return f.list, f.err
}

type fakeReports struct {
	list []models.CommunityReport
	err  error
}

func (f fakeReports) GetRecentReports(ctx context.Context, since time.Time) ([]models.CommunityReport, error) {
	return f.list, f.err
}

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		SafeThreshold:    7.5,
		CautionThreshold: 4.0,
		IncidentRadiusKm: 20,
		ReportRadiusKm:   2,
		ReportWindowDays: 30,
	}
}

func newTestScorer(risks CountryRiskProvider, incidents IncidentProvider, reports ReportProvider) *Scorer {
	return NewScorer(risks, incidents, reports, testScoringConfig(), clockwork.NewFakeClockAt(testNow))
}

func auRisk(score float64) *models.CountryRisk {
	return &models.CountryRisk{
		CountryCode: "AU",
		RiskScore:   score,
		Year:        2021,
		Source:      models.RiskDataSource,
		LastUpdated: testNow,
	}
}

func TestAssessCleanCountryOnly(t *testing.T) {
	s := newTestScorer(fakeRisks{rec: auRisk(8.0)}, fakeIncidents{}, fakeReports{})

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})

	assert.Equal(t, models.LabelSafe, a.Safety.Label)
	require.NotNil(t, a.Safety.Score)
	assert.Equal(t, 8.0, *a.Safety.Score)
	assert.Equal(t, models.CoverageCountry, a.Safety.Coverage)
	assert.Equal(t, "low", a.Safety.Confidence)
	assert.Equal(t, 7.5, a.Safety.Thresholds.Safe)
	assert.Equal(t, 4.0, a.Safety.Thresholds.Caution)

	assert.Nil(t, a.Incidents, "no incidents must marshal as null, not []")
	assert.Nil(t, a.Community)
	require.Len(t, a.Sources, 1)
	assert.Equal(t, models.RiskDataSource, a.Sources[0].Name)
	assert.Equal(t, 2021, a.Sources[0].Year)

	require.NotNil(t, a.Breakdown.CountryRisk)
	assert.Equal(t, 8.0, *a.Breakdown.CountryRisk)
	assert.Nil(t, a.Breakdown.Lighting)
	assert.Nil(t, a.Breakdown.Crowd)

	require.NotNil(t, a.Location.Country)
	assert.Equal(t, "AU", *a.Location.Country)
	assert.Equal(t, testNow, a.Timestamp)
}

func TestAssessNoCountry(t *testing.T) {
	s := newTestScorer(fakeRisks{}, fakeIncidents{}, fakeReports{})

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093})

	assert.Equal(t, models.LabelUnknown, a.Safety.Label)
	assert.Nil(t, a.Safety.Score)
	assert.Equal(t, models.CoverageNone, a.Safety.Coverage)
	assert.Nil(t, a.Sources)
	assert.Nil(t, a.Location.Country)
	assert.Nil(t, a.Breakdown.CountryRisk)
}

func TestAssessUnknownCountryDegradesToNoCoverage(t *testing.T) {
	s := newTestScorer(fakeRisks{rec: auRisk(8.0)}, fakeIncidents{}, fakeReports{})

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "zz"})

	assert.Equal(t, models.CoverageNone, a.Safety.Coverage)
	assert.Equal(t, models.LabelUnknown, a.Safety.Label)
	require.NotNil(t, a.Location.Country)
	assert.Equal(t, "ZZ", *a.Location.Country, "requested country still echoed uppercased")
}

func TestAssessEmergencyIncidentForcesUnsafe(t *testing.T) {
	incidents := []models.Incident{{
		ID: "fire-1", Type: "Bush Fire", Severity: models.SeverityEmergencyWarning,
		Lat: -33.88, Lng: 151.21, Source: "NSW RFS",
	}}
	s := newTestScorer(fakeRisks{rec: auRisk(9.5)}, fakeIncidents{list: incidents}, fakeReports{})

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})

	assert.Equal(t, models.LabelUnsafe, a.Safety.Label)
	require.NotNil(t, a.Safety.Score)
	assert.Equal(t, 9.5, *a.Safety.Score, "score is untouched, only the label is forced")
	require.Len(t, a.Incidents, 1)
}

func TestAssessNearestWarningDowngradesSafeOnly(t *testing.T) {
	warning := func() []models.Incident {
		return []models.Incident{{
			ID: "w-1", Type: "Flood", Severity: models.SeverityWarning,
			Lat: -33.88, Lng: 151.21, Source: "NSW RFS",
		}}
	}

	t.Run("safe becomes caution", func(t *testing.T) {
		s := newTestScorer(fakeRisks{rec: auRisk(8.5)}, fakeIncidents{list: warning()}, fakeReports{})
		a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})
		assert.Equal(t, models.LabelCaution, a.Safety.Label)
	})

	t.Run("caution stays caution", func(t *testing.T) {
		s := newTestScorer(fakeRisks{rec: auRisk(5.0)}, fakeIncidents{list: warning()}, fakeReports{})
		a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})
		assert.Equal(t, models.LabelCaution, a.Safety.Label)
	})

	t.Run("unsafe stays unsafe", func(t *testing.T) {
		s := newTestScorer(fakeRisks{rec: auRisk(2.0)}, fakeIncidents{list: warning()}, fakeReports{})
		a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})
		assert.Equal(t, models.LabelUnsafe, a.Safety.Label)
	})

	t.Run("watch and act on nearest also downgrades", func(t *testing.T) {
		incs := warning()
		incs[0].Severity = models.SeverityWatchAndAct
		s := newTestScorer(fakeRisks{rec: auRisk(8.5)}, fakeIncidents{list: incs}, fakeReports{})
		a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})
		assert.Equal(t, models.LabelCaution, a.Safety.Label)
	})

	t.Run("advice on nearest leaves safe alone", func(t *testing.T) {
		incs := warning()
		incs[0].Severity = models.SeverityAdvice
		s := newTestScorer(fakeRisks{rec: auRisk(8.5)}, fakeIncidents{list: incs}, fakeReports{})
		a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})
		assert.Equal(t, models.LabelSafe, a.Safety.Label)
	})
}

func TestAssessCommunityPenaltyShiftsLabel(t *testing.T) {
	reports := []models.CommunityReport{
		{ID: "r1", Type: models.ReportLighting, Lat: -33.8688, Lng: 151.2093, CreatedAt: testNow.Add(-time.Hour)},
		{ID: "r2", Type: models.ReportLighting, Lat: -33.8688, Lng: 151.2093, CreatedAt: testNow.Add(-time.Hour)},
	}
	s := newTestScorer(fakeRisks{rec: auRisk(8.0)}, fakeIncidents{}, fakeReports{list: reports})

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})

	require.NotNil(t, a.Safety.Score)
	assert.Equal(t, 7.3, *a.Safety.Score)
	assert.Equal(t, models.LabelCaution, a.Safety.Label)

	require.NotNil(t, a.Community)
	assert.Equal(t, 2, a.Community.Total)
	assert.Equal(t, -0.7, a.Community.Penalty)
	require.NotNil(t, a.Breakdown.Lighting)
	assert.Equal(t, "Poor", *a.Breakdown.Lighting)
	require.NotNil(t, a.Breakdown.CountryRisk)
	assert.Equal(t, 8.0, *a.Breakdown.CountryRisk, "breakdown shows the pre-penalty base")
}

func TestAssessScoreClampedToRange(t *testing.T) {
	reports := []models.CommunityReport{
		{ID: "r1", Type: models.ReportLighting, Lat: -33.8688, Lng: 151.2093, CreatedAt: testNow.Add(-time.Hour)},
		{ID: "r2", Type: models.ReportLighting, Lat: -33.8688, Lng: 151.2093, CreatedAt: testNow.Add(-time.Hour)},
		{ID: "r3", Type: models.ReportCrowdLow, Lat: -33.8688, Lng: 151.2093, CreatedAt: testNow.Add(-time.Hour)},
		{ID: "r4", Type: models.ReportCrowdLow, Lat: -33.8688, Lng: 151.2093, CreatedAt: testNow.Add(-time.Hour)},
	}
	s := newTestScorer(fakeRisks{rec: auRisk(0.5)}, fakeIncidents{}, fakeReports{list: reports})

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})

	require.NotNil(t, a.Safety.Score)
	assert.Equal(t, 0.0, *a.Safety.Score, "penalty cannot push the score below zero")
}

func TestAssessProviderFailuresDegrade(t *testing.T) {
	boom := errors.New("connection refused")
	s := newTestScorer(
		fakeRisks{err: boom},
		fakeIncidents{err: boom},
		fakeReports{err: boom},
	)

	a := s.Assess(context.Background(), Request{Lat: -33.8688, Lng: 151.2093, CountryCode: "AU"})

	assert.Equal(t, models.LabelUnknown, a.Safety.Label)
	assert.Equal(t, models.CoverageNone, a.Safety.Coverage)
	assert.Nil(t, a.Safety.Score)
	assert.Nil(t, a.Incidents)
	assert.Nil(t, a.Community)
	assert.Nil(t, a.Sources)
}

func TestLabelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{7.5, models.LabelSafe},
		{7.4, models.LabelCaution},
		{4.0, models.LabelCaution},
		{3.9, models.LabelUnsafe},
		{0.0, models.LabelUnsafe},
		{10.0, models.LabelSafe},
	}

	for _, tt := range tests {
		got := labelFromScore(&tt.score, 7.5, 4.0)
		assert.Equal(t, tt.want, got, "score %.1f", tt.score)
	}

	assert.Equal(t, models.LabelUnknown, labelFromScore(nil, 7.5, 4.0))
}

func TestDowngradeIdempotent(t *testing.T) {
	nearby := []models.NearbyIncident{{ID: "w", Severity: models.SeverityWarning, DistanceKm: 1.0}}

	once := downgradeByIncidents(models.LabelSafe, nearby)
	twice := downgradeByIncidents(once, nearby)
	assert.Equal(t, once, twice)
}
