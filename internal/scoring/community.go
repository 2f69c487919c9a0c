package scoring

import (
	"time"

	"github.com/safesignal/safesignal/internal/geo"
	"github.com/safesignal/safesignal/internal/models"
)

// Community label values surfaced in the assessment breakdown.
const (
	LightingPoor = "Poor"
	LightingGood = "Good"
	CrowdLow     = "Low"
	CrowdHigh    = "High"
)

// Penalty contributions when a negative signal has enough corroboration.
const (
	lightingPenalty = -0.7
	crowdPenalty    = -0.5
)

// corroborationThreshold is how many matching reports it takes before a
// negative label also carries a score penalty.
const corroborationThreshold = 2

// Signal is the aggregated community sentiment around a point.
//
// Zero filtered reports yields nil labels (no signal at all), while
// some-but-insufficient reports yields non-nil labels with zero penalty.
// Rendering code branches on this difference, so the asymmetry is part of
// the contract.
type Signal struct {
	Delta    float64
	Lighting *string
	Crowd    *string
	Total    int
}

// CommunitySignal aggregates recent community reports within radiusKm of
// origin into a penalty delta and lighting/crowd labels. Reports older than
// windowDays, with zero timestamps, or with non-finite coordinates are
// ignored.
func CommunitySignal(origin geo.Point, reports []models.CommunityReport, radiusKm float64, windowDays int, now time.Time) Signal {
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	var total, lightingNeg, crowdLow int
	for _, rep := range reports {
		if rep.CreatedAt.IsZero() || rep.CreatedAt.Before(cutoff) {
			continue
		}
		if !finite(rep.Lat) || !finite(rep.Lng) {
			continue
		}
		if geo.HaversineKm(origin, geo.Point{Lat: rep.Lat, Lng: rep.Lng}) > radiusKm {
			continue
		}

		total++
		switch rep.Type {
		case models.ReportLighting:
			lightingNeg++
		case models.ReportCrowd, models.ReportCrowdLow:
			crowdLow++
		}
	}

	if total == 0 {
		return Signal{}
	}

	sig := Signal{Total: total}

	if lightingNeg > 0 {
		sig.Lighting = strPtr(LightingPoor)
		if lightingNeg >= corroborationThreshold {
			sig.Delta += lightingPenalty
		}
	} else {
		sig.Lighting = strPtr(LightingGood)
	}

	if crowdLow > 0 {
		sig.Crowd = strPtr(CrowdLow)
		if crowdLow >= corroborationThreshold {
			sig.Delta += crowdPenalty
		}
	} else {
		sig.Crowd = strPtr(CrowdHigh)
	}

	return sig
}

func strPtr(s string) *string {
	return &s
}
