// Package geo resolves shipping addresses to coordinates.
package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("address not found")
	ErrDisabled = errors.New("geocoding disabled")
)

type Point struct {
	Lat decimal.Decimal
	Lon decimal.Decimal
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Point, error)
}

// Nominatim talks to an OpenStreetMap Nominatim compatible search API.
type Nominatim struct {
	client *resty.Client
}

func NewNominatim(baseURL, userAgent string) *Nominatim {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5*time.Second).
		SetRetryCount(1).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Nominatim{client: client}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (*Point, error) {
	var results []nominatimResult
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode())
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	lat, err := decimal.NewFromString(results[0].Lat)
	if err != nil {
		return nil, fmt.Errorf("geocode lat: %w", err)
	}
	lon, err := decimal.NewFromString(results[0].Lon)
	if err != nil {
		return nil, fmt.Errorf("geocode lon: %w", err)
	}

	return &Point{Lat: lat.Round(8), Lon: lon.Round(8)}, nil
}

type Disabled struct{}

func (Disabled) Geocode(context.Context, string) (*Point, error) {
	return nil, ErrDisabled
}
