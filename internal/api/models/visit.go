package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Media caps per visit.
const (
	MaxVisitPhotos = 10
	MaxVisitVideos = 3
)

type Visit struct {
	ID           int64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64                       `json:"user_id" gorm:"not null;index"`
	AquariumID   int64                       `json:"aquarium_id" gorm:"not null;index"`
	VisitedAt    time.Time                   `json:"visited_at" gorm:"not null;index"`
	Rating       *int                        `json:"rating,omitempty"`
	Weather      string                      `json:"weather"`
	Memo         string                      `json:"memo" gorm:"type:text"`
	GoodExhibits datatypes.JSONSlice[string] `json:"good_exhibits"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Aquarium *Aquarium `json:"aquarium,omitempty" gorm:"foreignKey:AquariumID;constraint:OnDelete:CASCADE;"`
}

func (Visit) TableName() string {
	return "visits"
}

// BeforeSave keeps visited_at a calendar date.
func (v *Visit) BeforeSave(tx *gorm.DB) error {
	if !v.VisitedAt.IsZero() {
		v.VisitedAt = DateOnly(v.VisitedAt)
	}
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
