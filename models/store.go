package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateAttendance = errors.New("attendance already recorded for this date")
	ErrUnknownUser         = errors.New("attendance references an unknown user")
)

// Store is the persistence the attendance service depends on.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	FindUser(ctx context.Context, id int64) (*User, error)
	// ListUsers returns every user, embeddings included, ordered by id.
	ListUsers(ctx context.Context) ([]User, error)

	// CreateAttendance returns ErrDuplicateAttendance when the user already
	// has a row for the date and ErrUnknownUser when the user does not exist.
	CreateAttendance(ctx context.Context, att *Attendance) error
	FindAttendance(ctx context.Context, userID int64, date string) (*Attendance, error)
	ListAttendanceByDate(ctx context.Context, date string) ([]Attendance, error)
	ListAttendanceByUser(ctx context.Context, userID int64) ([]Attendance, error)
	CountAttendanceByDate(ctx context.Context, date string) (int64, error)
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// GormStore implements Store on a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) FindUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) CreateAttendance(ctx context.Context, att *Attendance) error {
	err := s.db.WithContext(ctx).Omit("User").Create(att).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateAttendance
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrUnknownUser
	case err != nil:
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

func (s *GormStore) FindAttendance(ctx context.Context, userID int64, date string) (*Attendance, error) {
	var att Attendance
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&att).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &att, nil
}

func (s *GormStore) ListAttendanceByDate(ctx context.Context, date string) ([]Attendance, error) {
	var rows []Attendance
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("date = ?", date).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}
	return rows, nil
}

func (s *GormStore) ListAttendanceByUser(ctx context.Context, userID int64) ([]Attendance, error) {
	var rows []Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance for user %d: %w", userID, err)
	}
	return rows, nil
}

func (s *GormStore) CountAttendanceByDate(ctx context.Context, date string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Attendance{}).Where("date = ?", date).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count attendance for %s: %w", date, err)
	}
	return count, nil
}
