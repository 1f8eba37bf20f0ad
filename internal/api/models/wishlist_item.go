package models

import "time"

type WishlistItem struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_wishlist_user_aquarium"`
	AquariumID int64     `json:"aquarium_id" gorm:"not null;index;uniqueIndex:idx_wishlist_user_aquarium"`
	Priority   *int      `json:"priority,omitempty"`
	Memo       string    `json:"memo" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Aquarium *Aquarium `json:"aquarium,omitempty" gorm:"foreignKey:AquariumID;constraint:OnDelete:CASCADE;"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
