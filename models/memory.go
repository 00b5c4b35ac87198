package models

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It enforces the same (user, date)
// uniqueness and user foreign key as the database schema.
type MemoryStore struct {
	mu         sync.Mutex
	users      []User
	attendance []Attendance
	nextUser   int64
	nextAtt    int64
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUser++
	user.Id = s.nextUser
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) FindUser(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Id == id {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]User, len(s.users))
	copy(users, s.users)
	return users, nil
}

func (s *MemoryStore) CreateAttendance(_ context.Context, att *Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasUser(att.UserId) {
		return ErrUnknownUser
	}
	for _, a := range s.attendance {
		if a.UserId == att.UserId && a.Date == att.Date {
			return ErrDuplicateAttendance
		}
	}
	s.nextAtt++
	att.Id = s.nextAtt
	if att.CreatedAt.IsZero() {
		att.CreatedAt = s.now()
	}
	stored := *att
	stored.User = nil
	s.attendance = append(s.attendance, stored)
	return nil
}

func (s *MemoryStore) hasUser(id int64) bool {
	for _, u := range s.users {
		if u.Id == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) FindAttendance(_ context.Context, userID int64, date string) (*Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attendance {
		if a.UserId == userID && a.Date == date {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListAttendanceByDate(_ context.Context, date string) ([]Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []Attendance
	for _, a := range s.attendance {
		if a.Date != date {
			continue
		}
		for _, u := range s.users {
			if u.Id == a.UserId {
				user := u
				a.User = &user
				break
			}
		}
		rows = append(rows, a)
	}
	return rows, nil
}

func (s *MemoryStore) ListAttendanceByUser(_ context.Context, userID int64) ([]Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []Attendance
	for _, a := range s.attendance {
		if a.UserId == userID {
			rows = append(rows, a)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].Id > rows[j].Id
	})
	return rows, nil
}

func (s *MemoryStore) CountAttendanceByDate(_ context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, a := range s.attendance {
		if a.Date == date {
			n++
		}
	}
	return n, nil
}
