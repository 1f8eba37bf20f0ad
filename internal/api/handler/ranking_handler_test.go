package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRankingHandler_MostVisited(t *testing.T) {
	r, m := setupRouter(t)

	year := 2024
	m.rankings.On("MostVisited", mock.Anything, mock.MatchedBy(func(p service.RankingParams) bool {
		return p.Period == "year" && p.Year != nil && *p.Year == 2024 && p.Limit == 5 && p.Prefecture == ""
	})).Return(&service.RankingResult[dto.MostVisitedRow]{
		Rankings: []dto.MostVisitedRow{{
			RankingBase: dto.RankingBase{Rank: 1, ID: 1, Name: "Popular Aquarium", IsTop5: true},
			VisitCount:  10,
		}},
		Period: "year",
		Year:   &year,
	}, nil)

	rec := perform(r, http.MethodGet, "/api/v1/rankings/most_visited?period=year&year=2024&limit=5", "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "year", body["period"])
	assert.Equal(t, float64(2024), body["year"])
	assert.Nil(t, body["prefecture"])
	rows := body["rankings"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, float64(1), row["rank"])
	assert.Equal(t, true, row["is_top5"])
	assert.Equal(t, float64(10), row["visit_count"])
	assert.Nil(t, row["latest_photo_url"])
}

func TestRankingHandler_HiddenGemsParams(t *testing.T) {
	r, m := setupRouter(t)

	prefecture := "沖縄県"
	m.rankings.On("HiddenGems", mock.Anything, mock.MatchedBy(func(p service.RankingParams) bool {
		return p.Prefecture == prefecture &&
			p.MinRating != nil && *p.MinRating == 4.0 &&
			p.MaxVisits != nil && *p.MaxVisits == 20
	})).Return(&service.RankingResult[dto.HiddenGemRow]{
		Rankings:   []dto.HiddenGemRow{},
		Prefecture: &prefecture,
	}, nil)

	rec := perform(r, http.MethodGet,
		"/api/v1/rankings/hidden_gems?prefecture=%E6%B2%96%E7%B8%84%E7%9C%8C&min_rating=4.0&max_visits=20", "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rankings": [], "prefecture": "沖縄県"}`, rec.Body.String())
}

func TestRankingHandler_OtherBoards(t *testing.T) {
	r, m := setupRouter(t)

	m.rankings.On("HighestRated", mock.Anything, mock.Anything).
		Return(&service.RankingResult[dto.HighestRatedRow]{Rankings: []dto.HighestRatedRow{}}, nil)
	m.rankings.On("Trending", mock.Anything, mock.Anything).
		Return(&service.RankingResult[dto.TrendingRow]{Rankings: []dto.TrendingRow{}}, nil)
	m.rankings.On("WishlistChampions", mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	for _, path := range []string{"/api/v1/rankings/highest_rated", "/api/v1/rankings/trending"} {
		rec := perform(r, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := perform(r, http.MethodGet, "/api/v1/rankings/wishlist_champions", "", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode(t, rec)["error"])
}
