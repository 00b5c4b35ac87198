package service

import (
	"time"
)

func (s *AttendanceSuite) TestHistory() {
	ana := s.register("ana.jpg")

	for _, hour := range []int{8, 9} {
		s.now = time.Date(2026, 10, 19+hour-8, hour, 0, 0, 0, time.UTC)
		_, err := s.svc.MarkAttendance(s.ctx, []byte("ana.jpg"))
		s.Require().NoError(err)
	}

	h, err := s.svc.History(s.ctx, ana)
	s.Require().NoError(err)
	s.Equal("ana.jpg", h.User.Name)
	s.Require().Len(h.Attendance, 2)
	s.Equal("2026-10-20", h.Attendance[0].Date)
	s.Equal(2, h.Stats.Count)
}

func (s *AttendanceSuite) TestHistory_NoAttendanceYet() {
	ana := s.register("ana.jpg")

	h, err := s.svc.History(s.ctx, ana)
	s.Require().NoError(err)
	s.NotNil(h.Attendance)
	s.Empty(h.Attendance)
	s.Zero(h.Stats.Count)
}

func (s *AttendanceSuite) TestHistory_UnknownUser() {
	_, err := s.svc.History(s.ctx, 404)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *AttendanceSuite) TestDailyReport() {
	s.register("ana.jpg")
	s.register("budi.jpg")
	_, err := s.svc.MarkAttendance(s.ctx, []byte("budi.jpg"))
	s.Require().NoError(err)

	s.Run("defaults to today", func() {
		date, rows, err := s.svc.DailyReport(s.ctx, "")
		s.Require().NoError(err)
		s.Equal("2026-10-19", date)
		s.Require().Len(rows, 1)
		s.Equal("budi.jpg", rows[0].User.Name)
	})

	s.Run("other day is empty", func() {
		_, rows, err := s.svc.DailyReport(s.ctx, "2026-10-18")
		s.Require().NoError(err)
		s.NotNil(rows)
		s.Empty(rows)
	})

	s.Run("rejects malformed date", func() {
		_, _, err := s.svc.DailyReport(s.ctx, "19/10/2026")
		s.ErrorIs(err, ErrInvalidDate)
	})

	s.Run("count", func() {
		n, err := s.svc.DailyCount(s.ctx, "2026-10-19")
		s.Require().NoError(err)
		s.EqualValues(1, n)
	})
}

func (s *AttendanceSuite) TestUsers() {
	s.register("ana.jpg")
	s.register("budi.jpg")

	users, err := s.svc.Users(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 2)
}
