package dto

// Response envelopes of the aquarium API, as the CLI decodes them.

import (
	apidto "github.com/maho-na510/aquarium-visit-log/internal/api/dto"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	User apidto.RegisterInput `json:"user"`
}

type SessionResponse = apidto.SessionResponse

type MeResponse struct {
	User *apidto.SessionUser `json:"user"`
}

type AquariumList struct {
	Aquariums  []apidto.AquariumIndex `json:"aquariums"`
	Pagination *apidto.Pagination     `json:"pagination"`
}

type AquariumDetail = apidto.AquariumDetail

// RankingRow holds the metrics of every leaderboard; each board fills its own.
type RankingRow struct {
	apidto.RankingBase
	VisitCount       *int64   `json:"visit_count"`
	LatestVisit      *string  `json:"latest_visit"`
	AverageRating    *float64 `json:"average_rating"`
	RatingCount      *int64   `json:"rating_count"`
	RecentVisitCount *int64   `json:"recent_visit_count"`
	WishlistCount    *int64   `json:"wishlist_count"`
}

type RankingResponse struct {
	Rankings   []RankingRow `json:"rankings"`
	Period     string       `json:"period"`
	Year       *int         `json:"year"`
	MinVisits  *int         `json:"min_visits"`
	Days       *int         `json:"days"`
	MinRating  *float64     `json:"min_rating"`
	MaxVisits  *int         `json:"max_visits"`
	Prefecture *string      `json:"prefecture"`
}

type WishlistRequest struct {
	WishlistItem apidto.WishlistItemInput `json:"wishlist_item"`
}

type WishlistList struct {
	WishlistItems []apidto.WishlistListItem `json:"wishlist_items"`
	Pagination    *apidto.Pagination        `json:"pagination"`
}

type WishlistItem = apidto.WishlistItemDetail

// ErrorResponse covers both {"error": "..."} and {"errors": [...]}.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}
