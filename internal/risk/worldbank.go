package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/safesignal/safesignal/internal/errors"
)

const worldBankDataset = "worldbank-homicide"

// maxDatasetBytes bounds how much of the indicator response is read.
const maxDatasetBytes = 32 << 20

// WorldBankClient fetches the homicide-rate indicator table from the World
// Bank open data API. The response is a two-element JSON array of
// [pagination metadata, rows].
type WorldBankClient struct {
	url    string
	client *http.Client
}

// NewWorldBankClient creates a client for the given indicator URL.
func NewWorldBankClient(url string) *WorldBankClient {
	return &WorldBankClient{
		url: url,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// FetchIndicatorRows downloads and decodes the indicator table.
func (c *WorldBankClient) FetchIndicatorRows(ctx context.Context) ([]IndicatorRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: worldBankDataset, Err: err}
	}

	req.Header.Set("User-Agent", "SafeSignal-Monitor/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: worldBankDataset, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.DatasetFetchError{
			Dataset: worldBankDataset,
			Err:     fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: worldBankDataset, Err: err}
	}

	return decodeIndicatorResponse(body)
}

func decodeIndicatorResponse(body []byte) ([]IndicatorRow, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: worldBankDataset, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if len(envelope) < 2 {
		return nil, apperrors.DatasetFetchError{
			Dataset: worldBankDataset,
			Err:     fmt.Errorf("unexpected envelope length %d", len(envelope)),
		}
	}

	var rows []IndicatorRow
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, apperrors.DatasetFetchError{Dataset: worldBankDataset, Err: fmt.Errorf("decode rows: %w", err)}
	}

	return rows, nil
}
