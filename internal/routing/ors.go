// Package routing talks to OpenRouteService and turns directions into a
// stored route with an HOS stop plan and the trip's initial log sheet.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const (
	directionsPath = "/v2/directions/driving-car/geojson"
	metersPerMile  = 1609.34
	cacheSize      = 128
)

// Directions is the route summary the planner consumes. Geometry keeps
// the ORS [lon,lat] point order.
type Directions struct {
	DistanceMiles float64
	DurationHours float64
	Geometry      [][]float64
}

// ORSClient calls the OpenRouteService directions API. Responses are
// cached per coordinate pair, so replanning the same lane does not burn
// API quota.
type ORSClient struct {
	BaseURL string
	Key     string
	HTTP    *http.Client

	cache *lru.Cache[string, *Directions]
}

func NewORSClient(baseURL, key string) *ORSClient {
	cache, _ := lru.New[string, *Directions](cacheSize)

	return &ORSClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Key:     key,
		HTTP:    &http.Client{},
		cache:   cache,
	}
}

type orsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type orsResponse struct {
	Features []struct {
		Properties struct {
			Segments []struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"segments"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Directions fetches driving directions between two "lat,lon" points.
func (c *ORSClient) Directions(ctx context.Context, pickup, dropoff string) (*Directions, error) {
	key := pickup + "|" + dropoff
	if d, ok := c.cache.Get(key); ok {
		return d, nil
	}

	pickupLat, pickupLon, err := ParseLatLon(pickup)
	if err != nil {
		return nil, err
	}

	dropoffLat, dropoffLon, err := ParseLatLon(dropoff)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(orsRequest{
		// ORS speaks [lon,lat].
		Coordinates: [][]float64{{pickupLon, pickupLat}, {dropoffLon, dropoffLat}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal directions request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+directionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build directions request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.Key)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call openrouteservice")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, errors.Errorf("openrouteservice: status %d: %s", resp.StatusCode, string(b))
	}

	var parsed orsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode directions response")
	}

	if len(parsed.Features) == 0 || len(parsed.Features[0].Properties.Segments) == 0 {
		return nil, errors.New("openrouteservice: empty directions response")
	}

	segment := parsed.Features[0].Properties.Segments[0]

	d := &Directions{
		DistanceMiles: segment.Distance / metersPerMile,
		DurationHours: segment.Duration / 3600,
		Geometry:      parsed.Features[0].Geometry.Coordinates,
	}

	c.cache.Add(key, d)

	return d, nil
}

// ParseLatLon parses a "lat,lon" coordinate string.
func ParseLatLon(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("coordinates %q: want \"lat,lon\"", s)
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "coordinates %q", s)
	}

	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "coordinates %q", s)
	}

	return lat, lon, nil
}
