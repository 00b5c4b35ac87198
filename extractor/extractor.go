// Package extractor defines the face embedding extractor the attendance
// service consumes. Detection and embedding generation happen in the
// implementations under dlib/ and remote/.
package extractor

import (
	"context"
	"errors"
)

// ErrNoFace is returned when the image contains no detectable face.
var ErrNoFace = errors.New("no face detected")

// Extractor turns image bytes into the embedding of the first detected face.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]float64, error)
}

// Func adapts a function to Extractor.
type Func func(ctx context.Context, image []byte) ([]float64, error)

func (f Func) Extract(ctx context.Context, image []byte) ([]float64, error) {
	return f(ctx, image)
}
