// Package riskcache caches country risk lookups in Redis, deduplicating
// concurrent misses so a cold key costs one store read no matter how many
// assessments want it at once.
package riskcache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/metrics"
	"github.com/safesignal/safesignal/internal/models"
)

// notFoundMarker is cached in place of a record so absent countries do not
// hit the store on every assessment.
const notFoundMarker = "__none__"

// Provider is the underlying country risk lookup being cached.
type Provider interface {
	GetCountryRisk(ctx context.Context, countryCode string) (*models.CountryRisk, error)
}

// Cache is a read-through TTL cache over a Provider. A nil Redis client is
// allowed; the cache then only deduplicates in-flight lookups.
type Cache struct {
	client *redis.Client
	next   Provider
	ttl    time.Duration
	group  singleflight.Group
	log    *slog.Logger
}

// New creates a cache over next. client may be nil when Redis is not
// configured.
func New(client *redis.Client, next Provider, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    logger.Component("riskcache"),
	}
}

// GetCountryRisk returns the cached record for countryCode, filling the
// cache from the underlying provider on miss. Redis failures degrade to a
// plain provider call.
func (c *Cache) GetCountryRisk(ctx context.Context, countryCode string) (*models.CountryRisk, error) {
	key := "risk:" + countryCode

	if rec, err, ok := c.fromRedis(ctx, key); ok {
		metrics.RecordRiskCacheLookup("hit")
		return rec, err
	}
	metrics.RecordRiskCacheLookup("miss")

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		rec, err := c.next.GetCountryRisk(ctx, countryCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.store(ctx, key, nil)
			}
			return nil, err
		}
		c.store(ctx, key, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CountryRisk), nil
}

// fromRedis reports (record, error, found). found is false on miss or any
// Redis problem.
func (c *Cache) fromRedis(ctx context.Context, key string) (*models.CountryRisk, error, bool) {
	if c.client == nil {
		return nil, nil, false
	}

	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, nil, false
	}

	if raw == notFoundMarker {
		return nil, apperrors.ErrNotFound, true
	}

	var rec models.CountryRisk
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		c.log.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, nil, false
	}
	return &rec, nil, true
}

func (c *Cache) store(ctx context.Context, key string, rec *models.CountryRisk) {
	if c.client == nil {
		return
	}

	payload := notFoundMarker
	if rec != nil {
		b, err := json.Marshal(rec)
		if err != nil {
			return
		}
		payload = string(b)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}
