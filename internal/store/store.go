// Package store persists incidents, community reports and country risk
// records, with a Postgres implementation and an in-memory fallback.
package store

import (
	"context"
	"time"

	"github.com/safesignal/safesignal/internal/models"
)

// Store is the persistence interface for all three record kinds.
type Store interface {
	UpsertIncidents(ctx context.Context, incidents []models.Incident) error
	GetActiveIncidents(ctx context.Context, nowEpoch int64) ([]models.Incident, error)

	CreateReport(ctx context.Context, report models.CommunityReport) error
	GetRecentReports(ctx context.Context, since time.Time) ([]models.CommunityReport, error)

	UpsertCountryRisks(ctx context.Context, risks []models.CountryRisk) error
	GetCountryRisk(ctx context.Context, countryCode string) (*models.CountryRisk, error)

	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a store instance backed by Postgres when a database is
// configured, otherwise by process memory.
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	return NewInMemoryStore()
}
