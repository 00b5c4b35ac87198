// Package service implements registration and attendance marking on top of
// the store and the embedding extractor.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"FACEATTEND/extractor"
	"FACEATTEND/helper"
	"FACEATTEND/metrics"
	"FACEATTEND/models"
)

var (
	ErrMissingImage     = errors.New("no image uploaded")
	ErrNoFaceDetected   = errors.New("no face detected")
	ErrInvalidEmbedding = errors.New("invalid face embedding")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
)

// Status is the outcome of a successful MarkAttendance call.
type Status string

const (
	StatusMarked        Status = "marked"
	StatusAlreadyMarked Status = "already_marked"
	StatusNotRecognized Status = "not_recognized"
)

// MarkResult describes what MarkAttendance did.
type MarkResult struct {
	Status   Status
	UserID   int64
	Distance float64
	Date     string
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name  string
	Email string
	Image []byte
}

// Options tune the service. Zero values fall back to defaults.
type Options struct {
	Tolerance    float64
	EmbeddingDim int
	Location     *time.Location
	Now          func() time.Time
}

// Service holds the dependencies of the attendance operations.
type Service struct {
	store     models.Store
	extractor extractor.Extractor
	log       *logrus.Logger
	metrics   *metrics.Metrics

	tolerance float64
	dim       int
	loc       *time.Location
	now       func() time.Time
}

func New(store models.Store, ext extractor.Extractor, log *logrus.Logger, m *metrics.Metrics, opts Options) *Service {
	s := &Service{
		store:     store,
		extractor: ext,
		log:       log,
		metrics:   m,
		tolerance: opts.Tolerance,
		dim:       opts.EmbeddingDim,
		loc:       opts.Location,
		now:       opts.Now,
	}
	if s.tolerance <= 0 {
		s.tolerance = helper.DefaultTolerance
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location is the timezone attendance dates are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today returns the current attendance date.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// Register extracts the face in in.Image and stores a new user with it.
// The same face may be registered more than once.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	vec, err := s.embed(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: in.Name, Email: in.Email}
	if err := user.SetVector(vec); err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.IncUsersRegistered()
	s.log.WithFields(logrus.Fields{"user_id": user.Id, "name": user.Name}).Info("User registered")
	return user, nil
}

// MarkAttendance identifies the face in image among all registered users
// and records attendance for today. Not being recognized is a result, not
// an error.
func (s *Service) MarkAttendance(ctx context.Context, image []byte) (*MarkResult, error) {
	vec, err := s.embed(ctx, image)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	match := helper.Identify(vec, candidates, s.tolerance)
	if len(candidates) > 0 {
		s.metrics.ObserveDistance(match.Distance)
	}
	s.log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"closest":    match.ID,
		"distance":   match.Distance,
		"found":      match.Found,
	}).Debug("Identification finished")

	today := s.Today()
	if !match.Found {
		s.metrics.IncAttendance(metrics.OutcomeNotRecognized)
		return &MarkResult{Status: StatusNotRecognized, Date: today}, nil
	}

	res := &MarkResult{UserID: match.ID, Distance: match.Distance, Date: today}

	_, err = s.store.FindAttendance(ctx, match.ID, today)
	switch {
	case err == nil:
		res.Status = StatusAlreadyMarked
	case errors.Is(err, models.ErrNotFound):
		err = s.store.CreateAttendance(ctx, &models.Attendance{UserId: match.ID, Date: today})
		switch {
		case err == nil:
			res.Status = StatusMarked
		case errors.Is(err, models.ErrDuplicateAttendance):
			// A concurrent request inserted the row first.
			res.Status = StatusAlreadyMarked
		default:
			return nil, err
		}
	default:
		return nil, err
	}

	if res.Status == StatusMarked {
		s.metrics.IncAttendance(metrics.OutcomeMarked)
	} else {
		s.metrics.IncAttendance(metrics.OutcomeAlreadyMarked)
	}
	s.log.WithFields(logrus.Fields{
		"user_id": res.UserID,
		"date":    res.Date,
		"status":  res.Status,
	}).Info("Attendance processed")
	return res, nil
}

// embed runs the extractor and checks the embedding it returns.
func (s *Service) embed(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) == 0 {
		return nil, ErrMissingImage
	}

	vec, err := s.extractor.Extract(ctx, image)
	if errors.Is(err, extractor.ErrNoFace) {
		return nil, ErrNoFaceDetected
	}
	if err != nil {
		s.metrics.IncExtractFailures()
		return nil, fmt.Errorf("extract embedding: %w", err)
	}

	if len(vec) == 0 {
		return nil, ErrInvalidEmbedding
	}
	if s.dim > 0 && len(vec) != s.dim {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrInvalidEmbedding, len(vec), s.dim)
	}
	return vec, nil
}

// candidates loads every registered embedding in id order. Rows whose
// embedding cannot be decoded are skipped.
func (s *Service) candidates(ctx context.Context) ([]helper.Candidate, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]helper.Candidate, 0, len(users))
	for _, u := range users {
		vec, err := u.Vector()
		if err != nil {
			s.log.WithError(err).WithField("user_id", u.Id).Warn("Skipping user with unreadable embedding")
			continue
		}
		candidates = append(candidates, helper.Candidate{ID: u.Id, Vector: vec})
	}
	return candidates, nil
}
