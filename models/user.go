package models

import (
	"encoding/json"
	"time"
)

// User is a registered person and the face embedding captured at
// registration.
type User struct {
	Id        int64           `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255" json:"name"`
	Email     string          `gorm:"size:255" json:"email"`
	Embedding json.RawMessage `gorm:"type:json;not null" json:"-"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// SetVector stores v as the user's embedding.
func (u *User) SetVector(v []float64) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	u.Embedding = raw
	return nil
}

// Vector decodes the stored embedding.
func (u User) Vector() ([]float64, error) {
	var v []float64
	if err := json.Unmarshal(u.Embedding, &v); err != nil {
		return nil, err
	}
	return v, nil
}
