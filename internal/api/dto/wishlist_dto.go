package dto

import (
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
)

// WishlistItemRequest is the body of POST/PATCH /wishlist_items.
type WishlistItemRequest struct {
	WishlistItem WishlistItemInput `json:"wishlist_item"`
}

type WishlistItemInput struct {
	AquariumID *int64  `json:"aquarium_id"`
	Priority   *int    `json:"priority" binding:"omitempty,oneof=1 2 3 4 5"`
	Memo       *string `json:"memo"`
}

type WishlistAquarium struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Prefecture    string  `json:"prefecture"`
	AverageRating float64 `json:"average_rating"`
	VisitCount    int64   `json:"visit_count"`
}

// WishlistListItem is one row of GET /wishlist_items.
type WishlistListItem struct {
	ID        int64            `json:"id"`
	Aquarium  WishlistAquarium `json:"aquarium"`
	Priority  *int             `json:"priority"`
	Memo      string           `json:"memo"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewWishlistListItem(item models.WishlistItem, stats AquariumStats) WishlistListItem {
	out := WishlistListItem{
		ID:        item.ID,
		Priority:  item.Priority,
		Memo:      Truncate(item.Memo, memoPreviewLength),
		CreatedAt: item.CreatedAt,
	}
	if a := item.Aquarium; a != nil {
		out.Aquarium = WishlistAquarium{
			ID:            a.ID,
			Name:          a.Name,
			Address:       a.Address,
			Prefecture:    a.Prefecture,
			AverageRating: stats.AverageRating,
			VisitCount:    stats.VisitCount,
		}
	}
	return out
}

type WishlistAquariumDetail struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	Prefecture    string  `json:"prefecture"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AverageRating float64 `json:"average_rating"`
	VisitCount    int64   `json:"visit_count"`
}

// WishlistItemDetail is the single wishlist item shape.
type WishlistItemDetail struct {
	ID        int64                  `json:"id"`
	Aquarium  WishlistAquariumDetail `json:"aquarium"`
	Priority  *int                   `json:"priority"`
	Memo      string                 `json:"memo"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func NewWishlistItemDetail(item models.WishlistItem, stats AquariumStats) WishlistItemDetail {
	out := WishlistItemDetail{
		ID:        item.ID,
		Priority:  item.Priority,
		Memo:      item.Memo,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if a := item.Aquarium; a != nil {
		out.Aquarium = WishlistAquariumDetail{
			ID:            a.ID,
			Name:          a.Name,
			Description:   a.Description,
			Address:       a.Address,
			Prefecture:    a.Prefecture,
			Latitude:      a.Latitude,
			Longitude:     a.Longitude,
			AverageRating: stats.AverageRating,
			VisitCount:    stats.VisitCount,
		}
	}
	return out
}

// UserWishlistItem is one row of GET /users/:id/wishlist.
type UserWishlistItem struct {
	ID        int64           `json:"id"`
	Aquarium  AquariumSummary `json:"aquarium"`
	Priority  *int            `json:"priority"`
	Memo      string          `json:"memo"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserWishlistItem(item models.WishlistItem) UserWishlistItem {
	return UserWishlistItem{
		ID:        item.ID,
		Aquarium:  NewAquariumSummary(item.Aquarium),
		Priority:  item.Priority,
		Memo:      item.Memo,
		CreatedAt: item.CreatedAt,
	}
}
