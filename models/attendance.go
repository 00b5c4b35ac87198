package models

import "time"

// DateLayout is the format of Attendance.Date.
const DateLayout = "2006-01-02"

// Attendance records that a user was recognized on a calendar day. There is
// at most one row per (user_id, date).
type Attendance struct {
	Id        int64     `gorm:"primaryKey" json:"id"`
	UserId    int64     `gorm:"not null;uniqueIndex:uq_attendance_user_date,priority:1" json:"user_id"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_attendance_user_date,priority:2;index:idx_attendance_date" json:"date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserId;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
}

func (Attendance) TableName() string {
	return "attendance"
}
