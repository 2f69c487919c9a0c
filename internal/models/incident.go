package models

import "time"

// Normalized severity values produced by the severity package. The field
// stays an open string: feeds can carry vocabularies outside this set and
// downstream matching is substring-based, so unknown values pass through
// unchanged rather than being forced into the closed set.
const (
	SeverityAdvice           = "Advice"
	SeverityWarning          = "Warning"
	SeverityWatchAndAct      = "Watch and Act"
	SeverityEmergencyWarning = "Emergency Warning"
)

// Incident is a point hazard parsed from a GeoRSS/CAP feed.
// Immutable once parsed; the working set is replaced by periodic re-ingestion.
type Incident struct {
	ID        string     `json:"id" db:"id"`
	Type      string     `json:"type" db:"type"`
	Severity  string     `json:"severity" db:"severity"`
	Lat       float64    `json:"lat" db:"lat"`
	Lng       float64    `json:"lng" db:"lng"`
	StartedAt *time.Time `json:"startedAt" db:"started_at"`
	Source    string     `json:"source" db:"source"`
	// ExpiresAt is a soft TTL in epoch seconds; 0 means no expiry.
	// Expired incidents are excluded from every query.
	ExpiresAt int64 `json:"expiresAt,omitempty" db:"expires_at"`
}

// Expired reports whether the incident's TTL has passed at nowEpoch seconds.
func (i Incident) Expired(nowEpoch int64) bool {
	return i.ExpiresAt != 0 && i.ExpiresAt < nowEpoch
}

// NearbyIncident is the projection returned by proximity queries,
// nearest-first, with the computed distance rounded to one decimal.
type NearbyIncident struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	DistanceKm float64    `json:"distanceKm"`
	StartedAt  *time.Time `json:"startedAt"`
	Source     string     `json:"source"`
}
