package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/models"
)

// InMemoryStore implements Store using process memory. Used when no database
// is configured, and by tests.
type InMemoryStore struct {
	mu        sync.RWMutex
	incidents map[string]models.Incident
	reports   []models.CommunityReport
	risks     map[string]models.CountryRisk
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		incidents: make(map[string]models.Incident),
		risks:     make(map[string]models.CountryRisk),
	}
}

// UpsertIncidents stores incidents keyed by id, replacing existing entries
func (s *InMemoryStore) UpsertIncidents(ctx context.Context, incidents []models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inc := range incidents {
		s.incidents[inc.ID] = inc
	}

	return nil
}

// GetActiveIncidents returns all incidents whose TTL has not passed
func (s *InMemoryStore) GetActiveIncidents(ctx context.Context, nowEpoch int64) ([]models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Incident
	for _, inc := range s.incidents {
		if inc.Expired(nowEpoch) {
			continue
		}
		result = append(result, inc)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// CreateReport appends a community report
func (s *InMemoryStore) CreateReport(ctx context.Context, report models.CommunityReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	return nil
}

// GetRecentReports returns reports created at or after since, newest first
func (s *InMemoryStore) GetRecentReports(ctx context.Context, since time.Time) ([]models.CommunityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.CommunityReport
	for _, rep := range s.reports {
		if rep.CreatedAt.Before(since) {
			continue
		}
		result = append(result, rep)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// UpsertCountryRisks replaces risk records keyed by country code
func (s *InMemoryStore) UpsertCountryRisks(ctx context.Context, risks []models.CountryRisk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range risks {
		s.risks[strings.ToUpper(r.CountryCode)] = r
	}

	return nil
}

// GetCountryRisk looks up one country's risk record
func (s *InMemoryStore) GetCountryRisk(ctx context.Context, countryCode string) (*models.CountryRisk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.risks[strings.ToUpper(countryCode)]; ok {
		return &r, nil
	}

	return nil, apperrors.ErrNotFound
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
