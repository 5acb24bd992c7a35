package position

import (
	"context"
	"encoding/json"
	"errors"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/platform/httpx"
	"exsighting-location/internal/platform/obs"
	"exsighting-location/internal/ports"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// IPPositionProvider approximates the caller's position from its public IP
// using an ip-api compatible JSON endpoint.
//
// Failures are reported as *ports.PositionError so the location service can
// classify them. The provider never retries.
type IPPositionProvider struct {
	session *http.Client
	baseURL string
}

type ipLookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func NewIPPositionProvider(baseURL string) (*IPPositionProvider, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("ip position provider: base url is empty")
	}

	return &IPPositionProvider{
		// The per-call bound comes from PositionOptions; this is a backstop.
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}, nil
}

func (p *IPPositionProvider) CurrentPosition(
	ctx context.Context,
	opts ports.PositionOptions,
) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ip.CurrentPosition")(&err)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := p.newRequest(ctx)
	if err != nil {
		return domain.Coordinates{}, err
	}

	resp, err := httpx.Do(p.session, req)
	if err != nil {
		return domain.Coordinates{}, toPositionError(err)
	}
	defer resp.Body.Close()

	var decoded ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, &ports.PositionError{
			Code:    ports.PositionUnavailable,
			Message: fmt.Sprintf("decode ip lookup response: %v", err),
		}
	}

	if decoded.Status != "success" {
		msg := decoded.Message
		if msg == "" {
			msg = fmt.Sprintf("lookup status %q", decoded.Status)
		}
		return domain.Coordinates{}, &ports.PositionError{Code: ports.PositionUnavailable, Message: msg}
	}

	if decoded.Lat == nil || decoded.Lon == nil {
		return domain.Coordinates{}, &ports.PositionError{
			Code:    ports.PositionUnavailable,
			Message: "ip lookup response has no coordinates",
		}
	}

	return domain.Coordinates{Lat: *decoded.Lat, Lon: *decoded.Lon}, nil
}

func (p *IPPositionProvider) newRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("fields", "status,message,lat,lon")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")

	return req, nil
}
