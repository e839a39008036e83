// Package geocode resolves destination cities to coordinates through the
// Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Geocoding API JSON endpoint.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrNotFound indicates the address matched nothing.
	ErrNotFound = errors.New("geocode: no results")
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("geocode: request denied (API key missing or invalid)")
	// ErrRateLimited indicates the API quota was hit.
	ErrRateLimited = errors.New("geocode: rate limited")
)

// Geocoder resolves a city in a country.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (Location, error)
}

// Client calls the Geocoding API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given API key. An empty baseURL uses
// DefaultBaseURL. Returns nil if the key is empty.
func NewClient(apiKey, baseURL string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Geocode returns the first match for "city, country".
func (c *Client) Geocode(ctx context.Context, city, country string) (Location, error) {
	q := url.Values{}
	q.Set("address", strings.TrimSpace(city)+", "+strings.TrimSpace(country))
	q.Set("key", c.apiKey)

	body, err := c.get(ctx, q)
	if err != nil {
		return Location{}, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Location{}, fmt.Errorf("geocode: parsing response: %w", err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Location{}, ErrNotFound
	case "REQUEST_DENIED":
		return Location{}, ErrUnauthorized
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return Location{}, ErrRateLimited
	default:
		return Location{}, fmt.Errorf("geocode: status %s: %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return Location{}, ErrNotFound
	}

	first := resp.Results[0]
	return Location{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		PlaceID:          first.PlaceID,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// get performs a GET request with the given query and returns the body.
func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/palmvoyage/tripfund/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("geocode: reading response: %w", err)
	}
	return body, nil
}
