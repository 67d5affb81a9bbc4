// Package extractor turns captured camera frames into face descriptors.
// The actual face detection runs out of process; this package talks to it.
package extractor

import (
	"context"
	"errors"
)

// ErrNoFaceDetected is returned when the extractor finds no face in a frame.
var ErrNoFaceDetected = errors.New("no face detected in image")

// Provider defines the interface for descriptor extraction backends.
type Provider interface {
	Name() string
	Extract(ctx context.Context, imageData []byte) ([]float32, error)
}
