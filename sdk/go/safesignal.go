// Package sdk is a minimal Go client for the SafeSignal HTTP API.
package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.safesignal.example.com"
	}
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

// Safety fetches the safety assessment for a coordinate. The country code is
// optional; without it the assessment degrades to Unknown.
func (c *Client) Safety(lat, lng float64, country string) (map[string]interface{}, error) {
	u, _ := url.Parse(c.BaseURL + "/v1/safety")
	q := u.Query()
	q.Set("lat", fmt.Sprintf("%g", lat))
	q.Set("lng", fmt.Sprintf("%g", lng))
	if country != "" {
		q.Set("country", country)
	}
	u.RawQuery = q.Encode()
	req, _ := http.NewRequest("GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Incidents lists active incidents. Pass lat/lng/radius_km params for the
// nearby projection, or none for the full active set.
func (c *Client) Incidents(params map[string]string) (map[string]interface{}, error) {
	u, _ := url.Parse(c.BaseURL + "/v1/incidents")
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	req, _ := http.NewRequest("GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReport submits a community report and returns the stored record.
func (c *Client) CreateReport(reportType, text string, lat, lng float64) (map[string]interface{}, error) {
	body := fmt.Sprintf(`{"type":%q,"text":%q,"lat":%g,"lng":%g}`, reportType, text, lat, lng)
	req, _ := http.NewRequest("POST", c.BaseURL+"/v1/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create report: unexpected status %d", resp.StatusCode)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
