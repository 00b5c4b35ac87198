package service

import (
	"context"
	"errors"
	"time"

	"FACEATTEND/helper"
	"FACEATTEND/models"
)

// History is a user's attendance record.
type History struct {
	User       models.User         `json:"user"`
	Attendance []models.Attendance `json:"history"`
	Stats      helper.ArrivalStats `json:"stats"`
}

// Users lists registered users.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// History returns the attendance rows of a user, newest first, with the
// time-of-day statistics of when they were marked.
func (s *Service) History(ctx context.Context, userID int64) (*History, error) {
	user, err := s.store.FindUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListAttendanceByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Attendance{}
	}

	times := make([]time.Time, len(rows))
	for i, r := range rows {
		times[i] = r.CreatedAt
	}

	return &History{
		User:       *user,
		Attendance: rows,
		Stats:      helper.ComputeArrivalStats(times, s.loc),
	}, nil
}

// DailyReport returns the attendance rows for date (YYYY-MM-DD). An empty
// date means today.
func (s *Service) DailyReport(ctx context.Context, date string) (string, []models.Attendance, error) {
	if date == "" {
		date = s.Today()
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return "", nil, ErrInvalidDate
	}

	rows, err := s.store.ListAttendanceByDate(ctx, date)
	if err != nil {
		return "", nil, err
	}
	if rows == nil {
		rows = []models.Attendance{}
	}
	return date, rows, nil
}

// DailyCount returns how many users were marked on date.
func (s *Service) DailyCount(ctx context.Context, date string) (int64, error) {
	return s.store.CountAttendanceByDate(ctx, date)
}
