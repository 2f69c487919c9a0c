package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/models"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpsertIncidents inserts or updates incidents in the database
func (s *PostgresStore) UpsertIncidents(ctx context.Context, incidents []models.Incident) error {
	if len(incidents) == 0 {
		return nil
	}

	query := `
		INSERT INTO incidents (
			id, type, severity, lat, lng, started_at, source, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			severity = EXCLUDED.severity,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			started_at = EXCLUDED.started_at,
			source = EXCLUDED.source,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	for _, inc := range incidents {
		err := s.db.Exec(ctx, query,
			inc.ID, inc.Type, inc.Severity, inc.Lat, inc.Lng,
			inc.StartedAt, inc.Source, inc.ExpiresAt,
		)
		if err != nil {
			return apperrors.DatabaseError{Operation: "upsert_incidents", Err: fmt.Errorf("incident %s: %w", inc.ID, err)}
		}
	}

	return nil
}

// GetActiveIncidents retrieves all incidents whose TTL has not passed
func (s *PostgresStore) GetActiveIncidents(ctx context.Context, nowEpoch int64) ([]models.Incident, error) {
	query := `
		SELECT id, type, severity, lat, lng, started_at, source, expires_at
		FROM incidents
		WHERE expires_at = 0 OR expires_at >= $1
		ORDER BY id
	`

	rowsInterface, err := s.db.Query(ctx, query, nowEpoch)
	if err != nil {
		return nil, apperrors.DatabaseError{Operation: "get_active_incidents", Err: err}
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, apperrors.DatabaseError{Operation: "get_active_incidents", Err: fmt.Errorf("invalid rows type")}
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		err := rows.Scan(
			&inc.ID, &inc.Type, &inc.Severity, &inc.Lat, &inc.Lng,
			&inc.StartedAt, &inc.Source, &inc.ExpiresAt,
		)
		if err != nil {
			return nil, apperrors.DatabaseError{Operation: "get_active_incidents", Err: fmt.Errorf("scan: %w", err)}
		}
		incidents = append(incidents, inc)
	}

	return incidents, nil
}

// CreateReport inserts a community report
func (s *PostgresStore) CreateReport(ctx context.Context, report models.CommunityReport) error {
	query := `
		INSERT INTO community_reports (
			id, type, text, lat, lng, area_code, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	err := s.db.Exec(ctx, query,
		report.ID, report.Type, report.Text, report.Lat, report.Lng,
		report.AreaCode, report.CreatedAt,
	)
	if err != nil {
		return apperrors.DatabaseError{Operation: "create_report", Err: err}
	}

	return nil
}

// GetRecentReports retrieves reports created at or after since, newest first
func (s *PostgresStore) GetRecentReports(ctx context.Context, since time.Time) ([]models.CommunityReport, error) {
	query := `
		SELECT id, type, text, lat, lng, area_code, created_at
		FROM community_reports
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	rowsInterface, err := s.db.Query(ctx, query, since)
	if err != nil {
		return nil, apperrors.DatabaseError{Operation: "get_recent_reports", Err: err}
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, apperrors.DatabaseError{Operation: "get_recent_reports", Err: fmt.Errorf("invalid rows type")}
	}
	defer rows.Close()

	var reports []models.CommunityReport
	for rows.Next() {
		var rep models.CommunityReport
		err := rows.Scan(
			&rep.ID, &rep.Type, &rep.Text, &rep.Lat, &rep.Lng,
			&rep.AreaCode, &rep.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.DatabaseError{Operation: "get_recent_reports", Err: fmt.Errorf("scan: %w", err)}
		}
		reports = append(reports, rep)
	}

	return reports, nil
}

// UpsertCountryRisks replaces country risk records from a seeding run
func (s *PostgresStore) UpsertCountryRisks(ctx context.Context, risks []models.CountryRisk) error {
	if len(risks) == 0 {
		return nil
	}

	query := `
		INSERT INTO country_risk (
			country_code, risk_score, year, source, last_updated
		) VALUES (
			$1, $2, $3, $4, $5
		)
		ON CONFLICT (country_code) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			year = EXCLUDED.year,
			source = EXCLUDED.source,
			last_updated = EXCLUDED.last_updated
	`

	for _, r := range risks {
		err := s.db.Exec(ctx, query,
			r.CountryCode, r.RiskScore, r.Year, r.Source, r.LastUpdated,
		)
		if err != nil {
			return apperrors.DatabaseError{Operation: "upsert_country_risks", Err: fmt.Errorf("country %s: %w", r.CountryCode, err)}
		}
	}

	return nil
}

// GetCountryRisk retrieves one country's risk record
func (s *PostgresStore) GetCountryRisk(ctx context.Context, countryCode string) (*models.CountryRisk, error) {
	query := `
		SELECT country_code, risk_score, year, source, last_updated
		FROM country_risk
		WHERE country_code = UPPER($1)
	`

	rowInterface := s.db.QueryRow(ctx, query, countryCode)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, apperrors.DatabaseError{Operation: "get_country_risk", Err: fmt.Errorf("invalid row type")}
	}

	var r models.CountryRisk
	err := row.Scan(&r.CountryCode, &r.RiskScore, &r.Year, &r.Source, &r.LastUpdated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.DatabaseError{Operation: "get_country_risk", Err: fmt.Errorf("scan: %w", err)}
	}

	return &r, nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
