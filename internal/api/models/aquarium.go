package models

import (
	"time"

	"gorm.io/datatypes"
)

type Aquarium struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"not null;index"`
	Description string  `json:"description" gorm:"type:text"`
	Address     string  `json:"address" gorm:"not null"`
	Prefecture  string  `json:"prefecture" gorm:"size:16;index"`
	Latitude    float64 `json:"latitude" gorm:"not null"`
	Longitude   float64 `json:"longitude" gorm:"not null"`
	PhoneNumber string  `json:"phone_number"`
	Website     string  `json:"website"`

	// free-form maps, keys are preserved as given
	OpeningHours datatypes.JSONMap `json:"opening_hours"`
	AdmissionFee datatypes.JSONMap `json:"admission_fee"`

	UserID        *int64    `json:"user_id,omitempty" gorm:"index"`
	HeaderPhotoID *int64    `json:"header_photo_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Aquarium) TableName() string {
	return "aquariums"
}
