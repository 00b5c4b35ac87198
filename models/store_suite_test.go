package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/suite"
)

// StoreSuite exercises the Store contract. It runs against MemoryStore in
// unit tests and against MySQL in the integration build.
type StoreSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	ctx      context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
}

func (s *StoreSuite) createUser(name string, vector []float64) *User {
	u := &User{Name: name, Email: name + "@example.com"}
	s.Require().NoError(u.SetVector(vector))
	s.Require().NoError(s.store.CreateUser(s.ctx, u))
	return u
}

func (s *StoreSuite) TestUsers() {
	s.Run("assigns ids and lists in id order", func() {
		a := s.createUser("ana", []float64{0, 1})
		b := s.createUser("budi", []float64{1, 0})
		s.NotZero(a.Id)
		s.Greater(b.Id, a.Id)

		users, err := s.store.ListUsers(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(users, 2)
		s.Equal(a.Id, users[0].Id)
		s.Equal(b.Id, users[1].Id)

		v, err := users[1].Vector()
		s.Require().NoError(err)
		s.Equal([]float64{1, 0}, v)
	})

	s.Run("finds by id", func() {
		u := s.createUser("citra", []float64{0.5})
		found, err := s.store.FindUser(s.ctx, u.Id)
		s.Require().NoError(err)
		s.Equal("citra", found.Name)
		s.Equal("citra@example.com", found.Email)
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindUser(s.ctx, 987654)
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *StoreSuite) TestAttendance() {
	u := s.createUser("dewi", []float64{1, 1})
	other := s.createUser("eko", []float64{2, 2})

	s.Run("missing row", func() {
		_, err := s.store.FindAttendance(s.ctx, u.Id, "2026-10-19")
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("create then find", func() {
		att := &Attendance{UserId: u.Id, Date: "2026-10-19"}
		s.Require().NoError(s.store.CreateAttendance(s.ctx, att))
		s.NotZero(att.Id)

		found, err := s.store.FindAttendance(s.ctx, u.Id, "2026-10-19")
		s.Require().NoError(err)
		s.Equal(att.Id, found.Id)
		s.False(found.CreatedAt.IsZero())
	})

	s.Run("second row for the same day is rejected", func() {
		err := s.store.CreateAttendance(s.ctx, &Attendance{UserId: u.Id, Date: "2026-10-19"})
		s.ErrorIs(err, ErrDuplicateAttendance)
	})

	s.Run("unknown user is rejected", func() {
		err := s.store.CreateAttendance(s.ctx, &Attendance{UserId: 987654, Date: "2026-10-19"})
		s.ErrorIs(err, ErrUnknownUser)
	})

	s.Run("next day and other users are independent", func() {
		s.Require().NoError(s.store.CreateAttendance(s.ctx, &Attendance{UserId: u.Id, Date: "2026-10-20"}))
		s.Require().NoError(s.store.CreateAttendance(s.ctx, &Attendance{UserId: other.Id, Date: "2026-10-19"}))
	})

	s.Run("list by date includes user", func() {
		rows, err := s.store.ListAttendanceByDate(s.ctx, "2026-10-19")
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		for _, r := range rows {
			s.Require().NotNil(r.User)
			s.Equal(r.UserId, r.User.Id)
		}

		n, err := s.store.CountAttendanceByDate(s.ctx, "2026-10-19")
		s.Require().NoError(err)
		s.EqualValues(2, n)
	})

	s.Run("list by user newest first", func() {
		rows, err := s.store.ListAttendanceByUser(s.ctx, u.Id)
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal("2026-10-20", rows[0].Date)
		s.Equal("2026-10-19", rows[1].Date)
	})
}

func (s *StoreSuite) TestConcurrentAttendanceInsertsKeepOneRow() {
	u := s.createUser("fajar", []float64{3, 3})

	var (
		wg         sync.WaitGroup
		created    atomic.Int32
		duplicates atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateAttendance(s.ctx, &Attendance{UserId: u.Id, Date: "2026-10-21"})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, ErrDuplicateAttendance):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, created.Load())
	s.EqualValues(7, duplicates.Load())

	n, err := s.store.CountAttendanceByDate(s.ctx, "2026-10-21")
	s.Require().NoError(err)
	s.EqualValues(1, n)
}
