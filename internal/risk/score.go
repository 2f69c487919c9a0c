// Package risk derives per-country base safety scores from an external
// homicide-rate indicator dataset.
package risk

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/safesignal/safesignal/internal/models"
	"github.com/safesignal/safesignal/pkg/utils"
)

// IndicatorRow is one row of the external indicator table. Country code
// appears under several aliases depending on the dataset export, so all of
// them are decoded and resolved through CountryCode.
type IndicatorRow struct {
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO2Code string   `json:"countryiso2code"`
	CountryISO2     string   `json:"countryiso2"`
	CountryCodeAlt  string   `json:"countryCode"`
	Date            string   `json:"date"`
	Value           *float64 `json:"value"`
}

// CountryCode resolves the row's country code through the alias chain,
// uppercased. Empty when the row carries no code at all.
func (r IndicatorRow) CountryCode() string {
	code := utils.FirstNonEmpty(r.Country.ID, r.CountryISO2Code, r.CountryISO2, r.CountryCodeAlt)
	return strings.ToUpper(strings.TrimSpace(code))
}

// Year parses the row's date field as a calendar year. Returns 0 when it
// does not parse.
func (r IndicatorRow) Year() int {
	y, err := strconv.Atoi(strings.TrimSpace(r.Date))
	if err != nil {
		return 0
	}
	return y
}

// ComputeRiskScore maps a homicide rate (incidents per 100k population) onto
// a [0,10] safety score, rounded to one decimal. A rate of zero scores a
// perfect 10; anything at or above the ceiling scores 0; the mapping is
// linear in between.
func ComputeRiskScore(homicideRate, ceiling float64) float64 {
	ratio := utils.Clamp(homicideRate/ceiling, 0, 1)
	return utils.Round1(10 - ratio*10)
}

// ResolveCountryRisk picks the most recent usable row for a country and
// converts it to a risk record. Returns nil when the dataset has no row with
// a non-null value for that country.
func ResolveCountryRisk(countryCode string, rows []IndicatorRow, ceiling float64, now time.Time) *models.CountryRisk {
	want := strings.ToUpper(strings.TrimSpace(countryCode))
	if want == "" {
		return nil
	}

	var best *IndicatorRow
	for i := range rows {
		row := &rows[i]
		if row.Value == nil || row.CountryCode() != want {
			continue
		}
		if best == nil || row.Year() > best.Year() {
			best = row
		}
	}
	if best == nil {
		return nil
	}

	return &models.CountryRisk{
		CountryCode: want,
		RiskScore:   ComputeRiskScore(*best.Value, ceiling),
		Year:        best.Year(),
		Source:      models.RiskDataSource,
		LastUpdated: now,
	}
}

// BuildLatestRiskTable collapses the indicator table to one record per
// country, keeping only each country's most recent non-null row. Every
// record shares the same lastUpdated instant so a seeding run is atomic from
// the reader's point of view.
func BuildLatestRiskTable(rows []IndicatorRow, ceiling float64, now time.Time) []models.CountryRisk {
	latest := make(map[string]*IndicatorRow)
	for i := range rows {
		row := &rows[i]
		code := row.CountryCode()
		if code == "" || row.Value == nil {
			continue
		}
		if cur, ok := latest[code]; !ok || row.Year() > cur.Year() {
			latest[code] = row
		}
	}

	table := make([]models.CountryRisk, 0, len(latest))
	for code, row := range latest {
		table = append(table, models.CountryRisk{
			CountryCode: code,
			RiskScore:   ComputeRiskScore(*row.Value, ceiling),
			Year:        row.Year(),
			Source:      models.RiskDataSource,
			LastUpdated: now,
		})
	}

	sort.Slice(table, func(i, j int) bool {
		return table[i].CountryCode < table[j].CountryCode
	})

	return table
}
