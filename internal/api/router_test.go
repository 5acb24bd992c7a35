package api

import (
	"context"
	"encoding/json"
	"exsighting-location/internal/adapters/kvstore"
	"exsighting-location/internal/adapters/position"
	"exsighting-location/internal/api/dto"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/ports"
	"exsighting-location/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var hanoi = domain.Coordinates{Lat: 21.0285, Lon: 105.8542}

type fakePlaceRepo struct {
	places []*domain.Place
}

func (r *fakePlaceRepo) ListPlaces(context.Context) ([]*domain.Place, error) {
	return r.places, nil
}

func (r *fakePlaceRepo) GetPlace(_ context.Context, id int) (*domain.Place, bool, error) {
	for _, p := range r.places {
		if p.PlaceID == id {
			return p, true, nil
		}
	}
	return nil, false, nil
}

func newTestRepo() *fakePlaceRepo {
	coords := func(lat, lon float64) *domain.Coordinates { return &domain.Coordinates{Lat: lat, Lon: lon} }
	return &fakePlaceRepo{places: []*domain.Place{
		{PlaceID: 101, Name: "HA LONG BAY", Location: "Quang Ninh", Coords: coords(20.9101, 107.1839)},
		{PlaceID: 102, Name: "TUAN CHAU PARK", Location: "Quang Ninh", Coords: coords(20.9306, 106.9891)},
		{PlaceID: 103, Name: "HOI AN", Location: "Quang Nam", Coords: coords(15.8801, 108.3380)},
		{PlaceID: 110, Name: "NINH BINH", Location: "Ninh Binh"},
	}}
}

func newTestServer(t *testing.T, provider ports.PositionProvider) http.Handler {
	t.Helper()
	cache := services.NewLocationCache(kvstore.NewMemoryKVStore())
	svc := services.NewLocationService(provider, cache, services.LocationServiceOptions{Timeout: time.Second})
	return NewRouter(svc, newTestRepo(), RouterOptions{DefaultMaxAge: 5 * time.Minute})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Fatalf("body = %v", got)
	}
}

func TestGetLocationCachesProviderAnswer(t *testing.T) {
	provider := position.NewScriptedPositionProvider(position.ScriptedResult{Coords: hanoi})
	h := newTestServer(t, provider)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/location", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d body %s", i, rec.Code, rec.Body.String())
		}
		got := decode[dto.LocationResponse](t, rec)
		if got.Latitude != hanoi.Lat || got.Longitude != hanoi.Lon || got.Geohash != hanoi.Geohash(7) {
			t.Fatalf("call %d: body = %+v", i, got)
		}
	}
	if provider.Calls() != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.Calls())
	}
}

func TestGetLocationZeroMaxAgeForcesFresh(t *testing.T) {
	provider := position.NewScriptedPositionProvider(
		position.ScriptedResult{Coords: hanoi},
		position.ScriptedResult{Coords: hanoi},
	)
	h := newTestServer(t, provider)

	do(t, h, http.MethodGet, "/location", "")
	rec := do(t, h, http.MethodGet, "/location?max_age=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if provider.Calls() != 2 {
		t.Fatalf("provider calls = %d, want 2", provider.Calls())
	}
}

func TestGetLocationErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		provider ports.PositionProvider
		status   int
		kind     string
	}{
		{"unsupported", nil, http.StatusNotImplemented, "unsupported"},
		{"denied", position.NewScriptedPositionProvider(position.ScriptedResult{
			Err: &ports.PositionError{Code: ports.PositionPermissionDenied},
		}), http.StatusForbidden, "permission_denied"},
		{"unavailable", position.NewScriptedPositionProvider(position.ScriptedResult{
			Err: &ports.PositionError{Code: ports.PositionUnavailable},
		}), http.StatusServiceUnavailable, "position_unavailable"},
		{"timeout", position.NewScriptedPositionProvider(position.ScriptedResult{
			Err: &ports.PositionError{Code: ports.PositionTimeout},
		}), http.StatusGatewayTimeout, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.provider), http.MethodGet, "/location", "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decode[dto.ErrorResponse](t, rec); got.Kind != tt.kind || got.Error == "" {
				t.Fatalf("body = %+v, want kind %s", got, tt.kind)
			}
		})
	}
}

func TestGetLocationRejectsBadMaxAge(t *testing.T) {
	h := newTestServer(t, nil)
	for _, q := range []string{"-1", "soon", "-5m"} {
		if rec := do(t, h, http.MethodGet, "/location?max_age="+q, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("max_age=%s: status = %d", q, rec.Code)
		}
	}
}

func TestClearLocation(t *testing.T) {
	provider := position.NewScriptedPositionProvider(
		position.ScriptedResult{Coords: hanoi},
		position.ScriptedResult{Coords: hanoi},
	)
	h := newTestServer(t, provider)

	do(t, h, http.MethodGet, "/location", "")
	if rec := do(t, h, http.MethodDelete, "/location", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	do(t, h, http.MethodGet, "/location", "")
	if provider.Calls() != 2 {
		t.Fatalf("provider calls = %d, want 2", provider.Calls())
	}
}

func TestDistance(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/distance?from=21.0285,105.8542&to=10.7769,106.7009", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	got := decode[dto.DistanceResponse](t, rec)
	if got.DistanceKm < 1138 || got.DistanceKm > 1149 {
		t.Fatalf("distance = %v", got.DistanceKm)
	}
	if got.Label != services.FormatDistance(got.DistanceKm) {
		t.Fatalf("label = %q", got.Label)
	}

	for _, target := range []string{"/distance?from=1,2", "/distance?from=91,0&to=0,0", "/distance?from=a,b&to=0,0"} {
		if rec := do(t, h, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestDistanceAntipodal(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/distance?from=-84.19,-179&to=84.19,1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[dto.DistanceResponse](t, rec)
	if got.DistanceKm != 20015.09 || got.Label != "20015 km" {
		t.Fatalf("body = %+v", got)
	}
}

func TestNearbyPlaces(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/places/nearby?lat=21.0285&lon=105.8542&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	got := decode[dto.NearbyPlacesResponse](t, rec)
	if len(got.Places) != 2 || got.Places[0].PlaceID != 102 || got.Places[1].PlaceID != 101 {
		t.Fatalf("places = %+v", got.Places)
	}
}

func TestNearbyPlacesFallsBackToCurrentLocation(t *testing.T) {
	provider := position.NewScriptedPositionProvider(position.ScriptedResult{Coords: hanoi})
	rec := do(t, newTestServer(t, provider), http.MethodGet, "/places/nearby?radius_km=200", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	got := decode[dto.NearbyPlacesResponse](t, rec)
	if got.Origin.Latitude != hanoi.Lat || len(got.Places) != 2 {
		t.Fatalf("body = %+v", got)
	}

	rec = do(t, newTestServer(t, nil), http.MethodGet, "/places/nearby", "")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("without provider: status = %d", rec.Code)
	}
}

func TestNearbyPlacesBadQuery(t *testing.T) {
	h := newTestServer(t, nil)
	for _, q := range []string{"radius_km=-1", "limit=0", "limit=x", "lat=21"} {
		if rec := do(t, h, http.MethodGet, "/places/nearby?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", q, rec.Code)
		}
	}
}

func TestPlaceDistance(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/places/103/distance?lat=21.0285&lon=105.8542", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	got := decode[dto.PlaceDistanceResponse](t, rec)
	if got.PlaceID != 103 || got.DistanceKm <= 0 || got.Label == "" {
		t.Fatalf("body = %+v", got)
	}

	tests := []struct {
		target string
		status int
	}{
		{"/places/999/distance?lat=0&lon=0", http.StatusNotFound},
		{"/places/110/distance?lat=0&lon=0", http.StatusUnprocessableEntity},
		{"/places/abc/distance?lat=0&lon=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(t, h, http.MethodGet, tt.target, ""); rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.target, rec.Code, tt.status)
		}
	}
}

func TestVisitOrder(t *testing.T) {
	h := newTestServer(t, nil)

	body := `{"origin":{"latitude":21.0285,"longitude":105.8542},"place_ids":[103,101,102,101]}`
	rec := do(t, h, http.MethodPost, "/places/visit-order", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	got := decode[dto.VisitOrderResponse](t, rec)
	want := []int{102, 101, 103}
	if len(got.Stops) != len(want) {
		t.Fatalf("stops = %+v", got.Stops)
	}
	for i, id := range want {
		if got.Stops[i].PlaceID != id {
			t.Fatalf("stop %d = %d, want %d", i, got.Stops[i].PlaceID, id)
		}
	}
	last := got.Stops[len(got.Stops)-1]
	if last.CumulativeLabel != services.FormatDistance(last.CumulativeKm) {
		t.Fatalf("cumulative label = %q", last.CumulativeLabel)
	}
}

func TestVisitOrderRejectsBadBodies(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"unknown field", `{"place_ids":[101],"extra":1}`, http.StatusBadRequest},
		{"two objects", `{"place_ids":[101]}{}`, http.StatusBadRequest},
		{"no ids", `{"origin":{"latitude":1,"longitude":1},"place_ids":[]}`, http.StatusBadRequest},
		{"half origin", `{"origin":{"latitude":1},"place_ids":[101]}`, http.StatusBadRequest},
		{"unknown place", `{"origin":{"latitude":1,"longitude":1},"place_ids":[101,999]}`, http.StatusUnprocessableEntity},
		{"unlocated place", `{"origin":{"latitude":1,"longitude":1},"place_ids":[110]}`, http.StatusUnprocessableEntity},
		{"no origin and no provider", `{"place_ids":[101]}`, http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/places/visit-order", tt.body); rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/location", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	newTestServer(t, nil).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestAllowedOrigins(t *testing.T) {
	if got := allowedOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Fatalf("empty = %v", got)
	}
	got := allowedOrigins(" http://a.test , ,http://b.test")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("list = %v", got)
	}
}
