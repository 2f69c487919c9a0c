package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/safesignal/safesignal/internal/errors"
	"github.com/safesignal/safesignal/internal/models"
)

// maxFeedBytes bounds how much of a feed document is read.
const maxFeedBytes = 8 << 20

// Source fetches one hazard feed and turns it into incidents.
type Source struct {
	name     string
	url      string
	interval time.Duration
	client   *http.Client
}

// NewSource creates a feed source. The name becomes the provenance label on
// every incident the source produces.
func NewSource(name, url string, interval time.Duration) *Source {
	return &Source{
		name:     name,
		url:      url,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// Interval returns the polling interval.
func (s *Source) Interval() time.Duration {
	return s.interval
}

// Fetch downloads the feed and parses it into incidents. HTTP failures come
// back as DatasetFetchError, malformed documents as FeedParseError.
func (s *Source) Fetch(ctx context.Context) ([]models.Incident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: s.name, Err: err}
	}

	req.Header.Set("User-Agent", "SafeSignal-Monitor/1.0")
	req.Header.Set("Accept", "application/atom+xml, application/rss+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: s.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.DatasetFetchError{
			Dataset: s.name,
			Err:     fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: s.name, Err: err}
	}

	return ParseIncidentFeed(body, s.name)
}
