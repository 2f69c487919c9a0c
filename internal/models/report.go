package models

import "time"

// Community report types
const (
	ReportLighting   = "lighting"
	ReportHarassment = "harassment"
	ReportTheft      = "theft"
	ReportOther      = "other"
	ReportCrowd      = "crowd"
	ReportCrowdLow   = "crowd_low"
)

// MaxReportTextLen caps free-form report text.
const MaxReportTextLen = 2000

var reportTypes = map[string]bool{
	ReportLighting:   true,
	ReportHarassment: true,
	ReportTheft:      true,
	ReportOther:      true,
	ReportCrowd:      true,
	ReportCrowdLow:   true,
}

// ValidReportType reports whether t is one of the accepted report types.
func ValidReportType(t string) bool {
	return reportTypes[t]
}

// CommunityReport is a crowd-sourced observation. Read-only to the scoring
// engine; never mutated after creation.
type CommunityReport struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"`
	Text      string    `json:"text" db:"text"`
	Lat       float64   `json:"lat" db:"lat"`
	Lng       float64   `json:"lng" db:"lng"`
	AreaCode  *string   `json:"areaCode" db:"area_code"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
