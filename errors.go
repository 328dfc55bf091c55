package huginn

import (
	"errors"
	"fmt"
)

var (
	// ErrDetectionTimeout is reported when the terminal does not answer a
	// capability query before the deadline. It is never fatal.
	ErrDetectionTimeout = errors.New("terminal did not answer capability query in time")
	// ErrLogoNotFound is returned by logo stores when neither the requested
	// nor the generic logo exists.
	ErrLogoNotFound = errors.New("logo not found")
	// ErrNoGraphics is returned when encoding is requested for None.
	ErrNoGraphics = errors.New("terminal has no graphics protocol")
)

// RasterizeError reports a malformed or oversized logo source.
type RasterizeError struct {
	Reason string
	Err    error
}

func (e *RasterizeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rasterize: %s: %v", e.Reason, e.Err)
	}
	return "rasterize: " + e.Reason
}

func (e *RasterizeError) Unwrap() error { return e.Err }

// EncodeError reports a raster a protocol encoder cannot carry.
type EncodeError struct {
	Protocol Protocol
	Reason   string
	Err      error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s encode: %s: %v", e.Protocol, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s encode: %s", e.Protocol, e.Reason)
}

func (e *EncodeError) Unwrap() error { return e.Err }
