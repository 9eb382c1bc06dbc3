// Package places finds hospitals and clinics near a coordinate through the
// Google Maps Places API.
package places

import (
	"context"
	"errors"
	"time"

	"googlemaps.github.io/maps"
)

// ErrNotConfigured is returned when no Places API key was provided.
var ErrNotConfigured = errors.New("places client not configured")

const (
	searchRadiusMeters = 5000
	maxResults         = 5
)

// Hospital is one nearby facility.
type Hospital struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  float32 `json:"rating"`
	PlaceID string  `json:"place_id"`
}

// Client wraps the Maps SDK for nearby-hospital lookups.
type Client struct {
	client *maps.Client
}

// New returns a places client, or an unconfigured one when apiKey is empty.
func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return &Client{}, nil
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{client: c}, nil
}

// Configured reports whether lookups can be performed.
func (c *Client) Configured() bool {
	return c.client != nil
}

// FindNearby returns up to five hospitals or clinics around the coordinate.
func (c *Client) FindNearby(ctx context.Context, latitude, longitude float64) ([]Hospital, error) {
	if c.client == nil {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: latitude, Lng: longitude},
		Radius:   searchRadiusMeters,
		Type:     maps.PlaceTypeHospital,
		Keyword:  "hospital|clinic",
	})
	if err != nil {
		return nil, err
	}

	hospitals := make([]Hospital, 0, maxResults)
	for _, place := range resp.Results {
		hospitals = append(hospitals, Hospital{
			Name:    place.Name,
			Address: place.Vicinity,
			Rating:  place.Rating,
			PlaceID: place.PlaceID,
		})
		if len(hospitals) == maxResults {
			break
		}
	}
	return hospitals, nil
}
