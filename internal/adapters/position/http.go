package position

import (
	"context"
	"errors"
	"exsighting-location/internal/platform/httpx"
	"exsighting-location/internal/ports"
	"net"
	"net/http"
)

// toPositionError maps transport failures onto platform position codes.
func toPositionError(err error) *ports.PositionError {
	var se *httpx.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &ports.PositionError{Code: ports.PositionPermissionDenied, Message: se.Error()}
		default:
			return &ports.PositionError{Code: ports.PositionUnavailable, Message: se.Error()}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ports.PositionError{Code: ports.PositionTimeout, Message: err.Error()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ports.PositionError{Code: ports.PositionTimeout, Message: err.Error()}
	}

	return &ports.PositionError{Code: ports.PositionUnavailable, Message: err.Error()}
}
