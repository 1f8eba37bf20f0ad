package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Username  string     `gorm:"uniqueIndex;not null" json:"username"`
	Name      string     `gorm:"not null" json:"name"`
	Password  string     `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	Role      string     `gorm:"default:'user';not null" json:"role"`    // "user" or "admin"
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	FavoriteAquariums []Aquarium `gorm:"many2many:user_favorite_aquariums;constraint:OnDelete:CASCADE;" json:"favorite_aquariums,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
