package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/platform/httpx"
	"exsighting-location/internal/platform/obs"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ORSGeocoder implements ports.Geocoder using OpenRouteService /geocode/search.
// The provider is safe for concurrent use.
type ORSGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
	bounds  Bounds
	retry   httpx.RetryPolicy
}

// Bounds is an inclusive latitude/longitude box.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// VietnamBounds covers the mainland and near-shore islands.
var VietnamBounds = Bounds{MinLat: 8, MaxLat: 24, MinLon: 102, MaxLon: 110}

func (b Bounds) Contains(c domain.Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func NewORSGeocoder(apiKey string) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: "VN",
		bounds:  VietnamBounds,
		retry:   httpx.DefaultRetryPolicy,
	}, nil
}

// WithBaseURL points the geocoder at another ORS-compatible host.
func (o *ORSGeocoder) WithBaseURL(u string) *ORSGeocoder {
	o.baseURL = strings.TrimRight(u, "/")
	return o
}

// WithRetryPolicy replaces the retry policy for upstream calls.
func (o *ORSGeocoder) WithRetryPolicy(p httpx.RetryPolicy) *ORSGeocoder {
	o.retry = p
	return o
}

func (o *ORSGeocoder) newRequest(ctx context.Context, endpoint string, q url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// normalize collapses whitespace so equivalent queries look the same upstream.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves text to the best-ranked coordinate inside the
// geocoder's bounds. Transient upstream failures are retried.
func (o *ORSGeocoder) Geocode(ctx context.Context, text string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(text)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: text must be non-empty")
	}

	endpoint := o.baseURL + "/geocode/search"

	q := url.Values{}
	q.Set("text", norm)
	q.Set("boundary.country", o.country)
	q.Set("size", "1")

	resp, err := httpx.DoWithRetry(ctx, o.session, o.retry, func() (*http.Request, error) {
		return o.newRequest(ctx, endpoint, q)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", norm)
	}

	// ORS returns GeoJSON order: [lon, lat].
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", norm)
	}

	c := domain.Coordinates{Lat: coords[1], Lon: coords[0]}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}
	// boundary.country is a ranking hint upstream, not a hard filter.
	if !o.bounds.Contains(c) {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: result %s outside %s bounds", norm, c, o.country)
	}

	return c, nil
}
