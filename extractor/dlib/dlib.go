// Package dlib extracts 128-dimensional face descriptors with dlib through
// go-face. The model directory must contain shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and mmod_human_face_detector.dat.
package dlib

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/sirupsen/logrus"

	"FACEATTEND/extractor"
)

// ErrClosed is returned by Extract after Close.
var ErrClosed = errors.New("face recognizer is closed")

// engine is the part of *face.Recognizer the extractor uses.
type engine interface {
	Recognize(imgData []byte) ([]face.Face, error)
	Close()
}

// Extractor wraps a go-face recognizer. Recognize calls are serialized since
// the underlying dlib objects are not safe for concurrent use.
type Extractor struct {
	mu  sync.Mutex
	rec engine
	log *logrus.Logger
}

// New loads the dlib models from modelPath.
func New(modelPath string, log *logrus.Logger) (*Extractor, error) {
	log.Infof("Loading face recognition models from: %s", modelPath)
	rec, err := face.NewRecognizer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	log.Info("Face recognition models loaded")
	return &Extractor{rec: rec, log: log}, nil
}

// Extract returns the descriptor of the first face found in image.
func (e *Extractor) Extract(ctx context.Context, image []byte) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.rec == nil {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	faces, err := e.rec.Recognize(image)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(faces) == 0 {
		return nil, extractor.ErrNoFace
	}
	if len(faces) > 1 {
		e.log.WithField("faces", len(faces)).Debug("Multiple faces detected, using the first")
	}

	d := faces[0].Descriptor
	vec := make([]float64, len(d))
	for i, v := range d {
		vec[i] = float64(v)
	}
	return vec, nil
}

// Close releases the dlib models.
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		e.rec.Close()
		e.rec = nil
	}
}
