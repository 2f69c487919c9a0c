// Package scoring computes location safety assessments from country risk,
// nearby hazard incidents and community reports.
package scoring

import (
	"math"
	"sort"

	"github.com/safesignal/safesignal/internal/geo"
	"github.com/safesignal/safesignal/internal/models"
	"github.com/safesignal/safesignal/pkg/utils"
)

// NearbyIncidents filters incidents to those within radiusKm of origin,
// sorted nearest first. Expired incidents and incidents with non-finite
// coordinates are dropped before any distance math. Returns nil when
// nothing is in range.
func NearbyIncidents(origin geo.Point, incidents []models.Incident, radiusKm float64, nowEpoch int64) []models.NearbyIncident {
	type candidate struct {
		incident models.Incident
		distance float64
	}

	var inRange []candidate
	for _, inc := range incidents {
		if inc.Expired(nowEpoch) {
			continue
		}
		if !finite(inc.Lat) || !finite(inc.Lng) {
			continue
		}
		d := geo.HaversineKm(origin, geo.Point{Lat: inc.Lat, Lng: inc.Lng})
		if d > radiusKm {
			continue
		}
		inRange = append(inRange, candidate{incident: inc, distance: d})
	}

	if len(inRange) == 0 {
		return nil
	}

	// Sort on the exact distance, round only for presentation.
	sort.Slice(inRange, func(i, j int) bool {
		return inRange[i].distance < inRange[j].distance
	})

	out := make([]models.NearbyIncident, len(inRange))
	for i, c := range inRange {
		out[i] = models.NearbyIncident{
			ID:         c.incident.ID,
			Type:       c.incident.Type,
			Severity:   c.incident.Severity,
			DistanceKm: utils.Round1(c.distance),
			StartedAt:  c.incident.StartedAt,
			Source:     c.incident.Source,
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
