package scoring

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/safesignal/safesignal/config"
	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/geo"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/metrics"
	"github.com/safesignal/safesignal/internal/models"
	"github.com/safesignal/safesignal/pkg/utils"
)

// CountryRiskProvider looks up the base risk record for an ISO-2 country
// code. Implementations return apperrors.ErrNotFound when the country has no
// seeded record.
type CountryRiskProvider interface {
	GetCountryRisk(ctx context.Context, countryCode string) (*models.CountryRisk, error)
}

// IncidentProvider returns the active (non-expired) incident working set.
type IncidentProvider interface {
	GetActiveIncidents(ctx context.Context, nowEpoch int64) ([]models.Incident, error)
}

// ReportProvider returns community reports created at or after since.
type ReportProvider interface {
	GetRecentReports(ctx context.Context, since time.Time) ([]models.CommunityReport, error)
}

// Scorer assembles safety assessments from the three data sources. Each
// source degrades independently: a failed lookup contributes an empty result
// instead of failing the whole assessment.
type Scorer struct {
	risks     CountryRiskProvider
	incidents IncidentProvider
	reports   ReportProvider
	cfg       config.ScoringConfig
	clock     clockwork.Clock
	log       *slog.Logger
}

// NewScorer creates a scorer with the given providers and configuration.
func NewScorer(risks CountryRiskProvider, incidents IncidentProvider, reports ReportProvider, cfg config.ScoringConfig, clock clockwork.Clock) *Scorer {
	return &Scorer{
		risks:     risks,
		incidents: incidents,
		reports:   reports,
		cfg:       cfg,
		clock:     clock,
		log:       logger.Component("scoring"),
	}
}

// Request identifies the location to assess. CountryCode is optional; without
// it the assessment has no base score and coverage is NONE.
type Request struct {
	Lat         float64
	Lng         float64
	CountryCode string
}

// Assess computes the safety assessment for a location. The three lookups
// (country risk, incidents, community reports) run concurrently and join
// before scoring. Assess itself never fails; provider errors are logged and
// the affected signal defaults to empty.
func (s *Scorer) Assess(ctx context.Context, req Request) *models.Assessment {
	now := s.clock.Now().UTC()
	origin := geo.Point{Lat: req.Lat, Lng: req.Lng}
	country := strings.ToUpper(strings.TrimSpace(req.CountryCode))

	var (
		risk   *models.CountryRisk
		nearby []models.NearbyIncident
		signal Signal
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if country == "" {
			return nil
		}
		rec, err := s.risks.GetCountryRisk(gctx, country)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.log.Warn("country risk lookup failed", "country", country, "error", err)
			}
			return nil
		}
		risk = rec
		return nil
	})

	g.Go(func() error {
		incidents, err := s.incidents.GetActiveIncidents(gctx, now.Unix())
		if err != nil {
			s.log.Warn("incident lookup failed", "error", err)
			return nil
		}
		nearby = NearbyIncidents(origin, incidents, s.cfg.IncidentRadiusKm, now.Unix())
		return nil
	})

	g.Go(func() error {
		since := now.Add(-time.Duration(s.cfg.ReportWindowDays) * 24 * time.Hour)
		reports, err := s.reports.GetRecentReports(gctx, since)
		if err != nil {
			s.log.Warn("community report lookup failed", "error", err)
			return nil
		}
		signal = CommunitySignal(origin, reports, s.cfg.ReportRadiusKm, s.cfg.ReportWindowDays, now)
		return nil
	})

	// Branches swallow their own errors, so the join cannot fail.
	_ = g.Wait()

	return s.assemble(req, country, now, risk, nearby, signal)
}

func (s *Scorer) assemble(req Request, country string, now time.Time, risk *models.CountryRisk, nearby []models.NearbyIncident, signal Signal) *models.Assessment {
	coverage := models.CoverageNone

	var baseScore, score *float64
	if risk != nil {
		coverage = models.CoverageCountry
		base := clampScore(risk.RiskScore)
		baseScore = &base
		final := clampScore(base + signal.Delta)
		score = &final
	}

	label := labelFromScore(score, s.cfg.SafeThreshold, s.cfg.CautionThreshold)
	label = downgradeByIncidents(label, nearby)
	metrics.RecordAssessment(label, coverage)

	assessment := &models.Assessment{
		Location: models.AssessmentLocation{
			Lat: req.Lat,
			Lng: req.Lng,
		},
		Safety: models.SafetySummary{
			Label:      label,
			Score:      score,
			Coverage:   coverage,
			Confidence: "low",
			Thresholds: models.Thresholds{
				Safe:    s.cfg.SafeThreshold,
				Caution: s.cfg.CautionThreshold,
			},
		},
		Breakdown: models.Breakdown{
			CountryRisk: baseScore,
			Lighting:    signal.Lighting,
			Crowd:       signal.Crowd,
		},
		Incidents: nearby,
		Timestamp: now,
	}

	if country != "" {
		assessment.Location.Country = &country
	}
	if signal.Total > 0 {
		assessment.Community = &models.CommunitySummary{
			Total:    signal.Total,
			Lighting: signal.Lighting,
			Crowd:    signal.Crowd,
			Penalty:  signal.Delta,
		}
	}
	if risk != nil {
		assessment.Sources = []models.RiskSource{{Name: risk.Source, Year: risk.Year}}
	}

	return assessment
}

func clampScore(v float64) float64 {
	return utils.Clamp(utils.Round1(v), 0, 10)
}

// labelFromScore maps a score onto a label. A nil score means there is no
// base data at all and the label is Unknown.
func labelFromScore(score *float64, safeThreshold, cautionThreshold float64) string {
	switch {
	case score == nil:
		return models.LabelUnknown
	case *score >= safeThreshold:
		return models.LabelSafe
	case *score >= cautionThreshold:
		return models.LabelCaution
	default:
		return models.LabelUnsafe
	}
}

// downgradeByIncidents overrides the score-derived label based on nearby
// hazards. Any emergency-level incident in range forces Unsafe. Otherwise a
// watch-and-act or warning severity on the nearest incident knocks Safe down
// to Caution; other labels are left alone.
func downgradeByIncidents(label string, nearby []models.NearbyIncident) string {
	if len(nearby) == 0 {
		return label
	}

	for _, inc := range nearby {
		if strings.Contains(strings.ToLower(inc.Severity), "emergency") {
			return models.LabelUnsafe
		}
	}

	nearest := strings.ToLower(nearby[0].Severity)
	if label == models.LabelSafe && utils.ContainsAny(nearest, []string{"watch and act", "watch-and-act", "warning"}) {
		return models.LabelCaution
	}

	return label
}
