package ports

import (
	"context"
	"exsighting-location/internal/domain"
	"fmt"
	"time"
)

// Hints passed to the platform when requesting a fresh position.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// Platform failure codes, numbered as in the W3C Geolocation API.
type PositionErrorCode int

const (
	PositionPermissionDenied PositionErrorCode = 1
	PositionUnavailable      PositionErrorCode = 2
	PositionTimeout          PositionErrorCode = 3
)

// PositionError is a categorized failure reported by a PositionProvider.
type PositionError struct {
	Code    PositionErrorCode
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position error %d: %s", e.Code, e.Message)
}

// Port: the platform capability that locates the current user.
type PositionProvider interface {
	// Return the current position, or a *PositionError describing the failure.
	CurrentPosition(ctx context.Context, opts PositionOptions) (domain.Coordinates, error)
}
