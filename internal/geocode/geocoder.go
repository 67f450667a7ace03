package geocode

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Geocoder resolves a free-form address to a coordinate pair. A nil result
// with a nil error means the service found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Client talks to a LocationIQ-compatible forward geocoding endpoint.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// NewClient builds a geocoding client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:    resty.New().SetTimeout(10 * time.Second),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode looks up address and returns the first match, if any.
func (c *Client) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	var results []searchResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":    c.apiKey,
			"q":      address,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get(c.baseURL + "/v1/search")
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", address, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocoder returned HTTP %d for %q", resp.StatusCode(), address)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, nil
	}
	return &Coordinates{Lat: lat, Lon: lon}, nil
}
