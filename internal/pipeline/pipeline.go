// Package pipeline polls hazard feeds on an interval and upserts the parsed
// incidents into the store.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/safesignal/safesignal/config"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/metrics"
	"github.com/safesignal/safesignal/internal/models"
)

// Source defines a pluggable incident feed implementation
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Incident, error)
	Interval() time.Duration
}

// Store interface for incident storage
type Store interface {
	UpsertIncidents(ctx context.Context, incidents []models.Incident) error
}

// Pipeline coordinates concurrent fetching, TTL stamping and storing
type Pipeline struct {
	store   Store
	sources []Source
	cfg     config.FeedConfig
	clock   clockwork.Clock
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	mu      sync.RWMutex
	running bool
}

// New creates a new pipeline instance
func New(store Store, sources []Source, cfg config.FeedConfig, clock clockwork.Clock) *Pipeline {
	p := &Pipeline{
		store:   store,
		sources: sources,
		cfg:     cfg,
		clock:   clock,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)),
		sem:     semaphore.NewWeighted(int64(cfg.WorkerCount)),
	}

	logger.Info("Pipeline initialized",
		"sources", len(sources),
		"rate_limit", cfg.RateLimit,
		"workers", cfg.WorkerCount,
	)

	return p
}

// Run starts the pipeline and runs until context is cancelled
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pipeline already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	logger.Info("Starting pipeline")

	var wg sync.WaitGroup
	for _, src := range p.sources {
		src := src
		wg.Add(1)

		go func() {
			defer wg.Done()
			p.runSourcePoller(ctx, src)
		}()
	}

	wg.Wait()
	logger.Info("Pipeline stopped")
	return ctx.Err()
}

// runSourcePoller polls a single source until the context is cancelled
func (p *Pipeline) runSourcePoller(ctx context.Context, src Source) {
	logger.Info("Starting source poller", "source", src.Name())

	ticker := time.NewTicker(src.Interval())
	defer ticker.Stop()

	// Initial immediate run
	if err := p.runOnce(ctx, src); err != nil {
		logger.Error("Initial source run failed", "source", src.Name(), "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Source poller stopping", "source", src.Name())
			return
		case <-ticker.C:
			if err := p.runOnce(ctx, src); err != nil {
				logger.Error("Source run failed", "source", src.Name(), "error", err)

				select {
				case <-ctx.Done():
					return
				case <-time.After(p.cfg.RetryDelay):
				}
			}
		}
	}
}

// runOnce executes a single fetch-stamp-store cycle for a source
func (p *Pipeline) runOnce(ctx context.Context, src Source) error {
	runID := uuid.NewString()
	start := time.Now()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire semaphore: %w", err)
	}
	defer p.sem.Release(1)

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	incidents, err := p.fetchWithRetry(ctx, src, runID)
	if err != nil {
		metrics.RecordPipelineRun(src.Name(), "fetch_error", time.Since(start))
		return err
	}

	if len(incidents) == 0 {
		logger.Debug("No incidents fetched", "source", src.Name(), "run_id", runID)
		metrics.RecordPipelineRun(src.Name(), "empty", time.Since(start))
		return nil
	}

	p.stamp(incidents, src.Name())

	if err := p.store.UpsertIncidents(ctx, incidents); err != nil {
		metrics.RecordPipelineRun(src.Name(), "store_error", time.Since(start))
		return fmt.Errorf("store incidents: %w", err)
	}

	metrics.RecordPipelineRun(src.Name(), "ok", time.Since(start))
	metrics.RecordIncidentsIngested(src.Name(), len(incidents))
	logger.Info("Successfully processed incidents",
		"source", src.Name(),
		"run_id", runID,
		"count", len(incidents),
	)

	return nil
}

// fetchWithRetry fetches from the source with linear backoff
func (p *Pipeline) fetchWithRetry(ctx context.Context, src Source, runID string) ([]models.Incident, error) {
	var incidents []models.Incident
	var err error

	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * p.cfg.RetryDelay
			logger.Debug("Retrying fetch", "source", src.Name(), "run_id", runID, "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		incidents, err = src.Fetch(ctx)
		if err == nil {
			return incidents, nil
		}

		logger.Warn("Fetch attempt failed",
			"source", src.Name(),
			"run_id", runID,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, fmt.Errorf("%s fetch failed after %d attempts: %w", src.Name(), p.cfg.RetryAttempts+1, err)
}

// stamp fills in provenance and the soft TTL on each fetched incident
func (p *Pipeline) stamp(incidents []models.Incident, sourceName string) {
	expiresAt := p.clock.Now().UTC().Add(p.cfg.IncidentTTL).Unix()

	for i := range incidents {
		if incidents[i].Source == "" {
			incidents[i].Source = sourceName
		}
		incidents[i].ExpiresAt = expiresAt
	}
}

// IsRunning returns whether the pipeline is currently running
func (p *Pipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}
