package dto

import "github.com/maho-na510/aquarium-visit-log/internal/api/models"

// TopRank is the last rank flagged is_top5.
const TopRank = 5

// RankingBase holds the fields every leaderboard row shares.
type RankingBase struct {
	Rank           int     `json:"rank"`
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Prefecture     string  `json:"prefecture"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	IsTop5         bool    `json:"is_top5"`
	LatestPhotoURL *string `json:"latest_photo_url"`
}

// NewRankingBase decorates a; rank is 1-based within the returned list.
func NewRankingBase(rank int, a models.Aquarium, latestPhotoURL string) RankingBase {
	return RankingBase{
		Rank:           rank,
		ID:             a.ID,
		Name:           a.Name,
		Address:        a.Address,
		Prefecture:     a.Prefecture,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		IsTop5:         rank <= TopRank,
		LatestPhotoURL: stringPtr(latestPhotoURL),
	}
}

type MostVisitedRow struct {
	RankingBase
	VisitCount  int64 `json:"visit_count"`
	LatestVisit *Date `json:"latest_visit"`
}

type HighestRatedRow struct {
	RankingBase
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

type TrendingRow struct {
	RankingBase
	RecentVisitCount int64   `json:"recent_visit_count"`
	AverageRating    float64 `json:"average_rating"`
}

type WishlistChampionRow struct {
	RankingBase
	WishlistCount int64   `json:"wishlist_count"`
	AverageRating float64 `json:"average_rating"`
	VisitCount    int64   `json:"visit_count"`
}

type HiddenGemRow struct {
	RankingBase
	AverageRating float64 `json:"average_rating"`
	VisitCount    int64   `json:"visit_count"`
	RatingCount   int64   `json:"rating_count"`
}
