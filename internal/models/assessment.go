package models

import "time"

// Safety labels
const (
	LabelSafe    = "Safe"
	LabelCaution = "Caution"
	LabelUnsafe  = "Unsafe"
	LabelUnknown = "Unknown"
)

// Coverage indicates whether a safety score has any base data behind it.
const (
	CoverageNone    = "NONE"
	CoverageCountry = "COUNTRY"
)

// Assessment is the computed safety result for a location. It is ephemeral:
// built per request and never persisted. Client UIs key off these exact
// field names; the null-vs-empty convention (nil slices/pointers marshal to
// JSON null, never []) is part of the contract.
type Assessment struct {
	Location  AssessmentLocation `json:"location"`
	Safety    SafetySummary      `json:"safety"`
	Breakdown Breakdown          `json:"breakdown"`
	Incidents []NearbyIncident   `json:"incidents"`
	Community *CommunitySummary  `json:"community"`
	Sources   []RiskSource       `json:"sources"`
	Timestamp time.Time          `json:"timestamp"`
}

type AssessmentLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Country *string `json:"country"`
}

type SafetySummary struct {
	Label      string     `json:"label"`
	Score      *float64   `json:"score"`
	Coverage   string     `json:"coverage"`
	Confidence string     `json:"confidence"`
	Thresholds Thresholds `json:"thresholds"`
}

type Thresholds struct {
	Safe    float64 `json:"safe"`
	Caution float64 `json:"caution"`
}

// Breakdown rows are omitted entirely when a signal is absent; rendering
// code branches on presence to decide whether to show a row.
type Breakdown struct {
	CountryRisk *float64 `json:"country_risk,omitempty"`
	Lighting    *string  `json:"lighting,omitempty"`
	Crowd       *string  `json:"crowd,omitempty"`
}

type CommunitySummary struct {
	Total    int     `json:"total"`
	Lighting *string `json:"lighting"`
	Crowd    *string `json:"crowd"`
	Penalty  float64 `json:"penalty"`
}

type RiskSource struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}
