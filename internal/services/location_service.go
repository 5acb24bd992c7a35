package services

import (
	"context"
	"errors"
	"exsighting-location/internal/domain"
	"exsighting-location/internal/platform/obs"
	"exsighting-location/internal/ports"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultLocationMaxAge  = 5 * time.Minute
	DefaultLocationTimeout = 10 * time.Second
)

// LocationService answers "where is the user, approximately, right now".
//
// It consults the LocationCache first and only asks the PositionProvider on
// a miss. Concurrent misses share one provider call. No retries are made and
// no default coordinate is ever invented.
type LocationService struct {
	provider ports.PositionProvider
	cache    *LocationCache
	opts     ports.PositionOptions
	group    singleflight.Group
}

type LocationServiceOptions struct {
	EnableHighAccuracy bool
	// Upper bound on a single provider call. Zero means DefaultLocationTimeout.
	Timeout time.Duration
	// Maximum age of a position the platform may hand back from its own cache.
	MaximumAge time.Duration
}

// NewLocationService builds a service. A nil provider makes every cache
// miss fail with KindUnsupported.
func NewLocationService(provider ports.PositionProvider, cache *LocationCache, o LocationServiceOptions) *LocationService {
	if o.Timeout <= 0 {
		o.Timeout = DefaultLocationTimeout
	}

	return &LocationService{
		provider: provider,
		cache:    cache,
		opts: ports.PositionOptions{
			EnableHighAccuracy: o.EnableHighAccuracy,
			Timeout:            o.Timeout,
			MaximumAge:         o.MaximumAge,
		},
	}
}

// Supported reports whether a position provider is configured.
func (s *LocationService) Supported() bool {
	return s.provider != nil
}

// CurrentCoordinates returns a cached coordinate younger than maxAge, or
// requests a fresh one and caches it. Failures are *domain.LocationError.
func (s *LocationService) CurrentCoordinates(ctx context.Context, maxAge time.Duration) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "location.CurrentCoordinates")(&err)

	if c, ok := s.cache.Load(ctx, maxAge); ok {
		return c, nil
	}

	if s.provider == nil {
		return domain.Coordinates{}, domain.NewLocationError(
			domain.KindUnsupported, "no position provider is available on this platform", nil,
		)
	}

	// The shared call must outlive any single caller, so it is detached from
	// caller cancellation and bounded by the provider timeout instead.
	ch := s.group.DoChan(UserLocationKey, func() (any, error) {
		return s.requestFresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return domain.Coordinates{}, classifyPositionError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinates{}, res.Err
		}
		return res.Val.(domain.Coordinates), nil
	}
}

// ClearCache forgets the cached coordinate.
func (s *LocationService) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx)
}

func (s *LocationService) requestFresh(ctx context.Context) (domain.Coordinates, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	c, err := s.provider.CurrentPosition(callCtx, s.opts)
	if err != nil {
		return domain.Coordinates{}, classifyPositionError(err)
	}

	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, domain.NewLocationError(
			domain.KindPositionUnavailable, "platform returned invalid coordinates", err,
		)
	}

	s.cache.Save(ctx, c)
	log.Printf("location: fresh position cached geohash=%s", c.Geohash(5))

	return c, nil
}

// classifyPositionError maps platform failures onto the closed kind set.
func classifyPositionError(err error) *domain.LocationError {
	var le *domain.LocationError
	if errors.As(err, &le) {
		return le
	}

	var pe *ports.PositionError
	if errors.As(err, &pe) {
		switch pe.Code {
		case ports.PositionPermissionDenied:
			return domain.NewLocationError(domain.KindPermissionDenied, "user denied the request for geolocation", err)
		case ports.PositionUnavailable:
			return domain.NewLocationError(domain.KindPositionUnavailable, "location information is unavailable", err)
		case ports.PositionTimeout:
			return domain.NewLocationError(domain.KindTimeout, "the request to get user location timed out", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewLocationError(domain.KindTimeout, "the request to get user location timed out", err)
	}

	return domain.NewLocationError(domain.KindUnknown, fmt.Sprintf("unknown error: %v", err), err)
}
