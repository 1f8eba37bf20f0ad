package dto

import (
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
)

// UserRequest is the body of PATCH /users/:id
type UserRequest struct {
	User UserInput `json:"user"`
}

type UserInput struct {
	Name                *string `json:"name"`
	Username            *string `json:"username"`
	FavoriteAquariumIDs []int64 `json:"favorite_aquarium_ids"`
}

// UserProfile: response for GET /users/:id
type UserProfile struct {
	ID                int64             `json:"id"`
	Email             string            `json:"email"`
	Username          string            `json:"username"`
	Name              string            `json:"name"`
	AvatarURL         *string           `json:"avatar_url"`
	FavoriteAquariums []AquariumSummary `json:"favorite_aquariums"`
	VisitCount        int64             `json:"visit_count"`
	WishlistCount     int64             `json:"wishlist_count"`
	CreatedAt         time.Time         `json:"created_at"`
}

func NewUserProfile(u models.User, avatarURL string, visitCount, wishlistCount int64) UserProfile {
	favorites := make([]AquariumSummary, 0, len(u.FavoriteAquariums))
	for i := range u.FavoriteAquariums {
		favorites = append(favorites, NewAquariumSummary(&u.FavoriteAquariums[i]))
	}
	return UserProfile{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		Name:              u.Name,
		AvatarURL:         stringPtr(avatarURL),
		FavoriteAquariums: favorites,
		VisitCount:        visitCount,
		WishlistCount:     wishlistCount,
		CreatedAt:         u.CreatedAt,
	}
}
