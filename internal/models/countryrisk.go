package models

import "time"

// RiskDataSource is the provenance label for the homicide indicator dataset.
const RiskDataSource = "WorldBank/UNODC"

// CountryRisk is one risk record per country, derived from the most recent
// year of the external homicide-rate indicator. RiskScore is in [0,10],
// higher = safer. Exactly one record exists per country code; seeding runs
// overwrite it with whichever row carries the greatest year.
type CountryRisk struct {
	CountryCode string    `json:"countryCode" db:"country_code"`
	RiskScore   float64   `json:"riskScore" db:"risk_score"`
	Year        int       `json:"year" db:"year"`
	Source      string    `json:"source" db:"source"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}
