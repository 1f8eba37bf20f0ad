package service

import (
	"testing"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(rating, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rating
	}
	return out
}

func TestMostVisited_Scenario(t *testing.T) {
	env := newEnv(t)
	u := env.user(t, "u", models.RoleUser)
	popular := env.aquarium(t, "Popular Aquarium", "東京都", 35.7, 139.8)
	less := env.aquarium(t, "Less Popular", "東京都", 35.7, 139.8)
	another := env.aquarium(t, "Another", "大阪府", 34.6, 135.4)
	env.visitMany(t, u.ID, popular.ID, repeat(4, 10)...)
	env.visitMany(t, u.ID, less.ID, repeat(3, 5)...)
	env.visitMany(t, u.ID, another.ID, repeat(5, 2)...)

	// only the newest visit of popular has a photo
	var newest models.Visit
	require.NoError(t, env.db.Where("aquarium_id = ?", popular.ID).Order("visited_at DESC").First(&newest).Error)
	photo := env.photo(t, models.RecordVisit, newest.ID)

	res, err := env.rankings.MostVisited(ctx, RankingParams{})
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, res.Period)
	assert.Nil(t, res.Prefecture)
	require.Len(t, res.Rankings, 3)

	want := []struct {
		name  string
		count int64
	}{{"Popular Aquarium", 10}, {"Less Popular", 5}, {"Another", 2}}
	for i, w := range want {
		row := res.Rankings[i]
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, w.name, row.Name)
		assert.Equal(t, w.count, row.VisitCount)
		assert.True(t, row.IsTop5)
		require.NotNil(t, row.LatestVisit)
		assert.Equal(t, "2024-06-14", row.LatestVisit.Time().Format("2006-01-02"))
	}
	require.NotNil(t, res.Rankings[0].LatestPhotoURL)
	assert.Equal(t, env.store.URL(photo.Key), *res.Rankings[0].LatestPhotoURL)
	assert.Nil(t, res.Rankings[1].LatestPhotoURL)

	res, err = env.rankings.MostVisited(ctx, RankingParams{Prefecture: "大阪府", Limit: 5})
	require.NoError(t, err)
	require.Len(t, res.Rankings, 1)
	assert.Equal(t, "Another", res.Rankings[0].Name)
	assert.Equal(t, 1, res.Rankings[0].Rank)
	require.NotNil(t, res.Prefecture)
	assert.Equal(t, "大阪府", *res.Prefecture)
}

func TestMostVisited_Period(t *testing.T) {
	env := newEnv(t)
	u := env.user(t, "u", models.RoleUser)
	a := env.aquarium(t, "A", "東京都", 35.7, 139.8)
	b := env.aquarium(t, "B", "東京都", 35.7, 139.8)
	env.visit(t, u.ID, a.ID, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), 0)
	env.visit(t, u.ID, a.ID, time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), 0)
	env.visit(t, u.ID, b.ID, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 0)
	env.visit(t, u.ID, b.ID, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), 0)
	env.visit(t, u.ID, b.ID, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), 0)

	res, err := env.rankings.MostVisited(ctx, RankingParams{Period: PeriodYear, Year: intPtr(2023)})
	require.NoError(t, err)
	assert.Equal(t, PeriodYear, res.Period)
	assert.Equal(t, 2023, *res.Year)
	require.Len(t, res.Rankings, 1)
	assert.Equal(t, "A", res.Rankings[0].Name)
	assert.Equal(t, int64(2), res.Rankings[0].VisitCount)

	// year defaults to the current one
	res, err = env.rankings.MostVisited(ctx, RankingParams{Period: PeriodYear})
	require.NoError(t, err)
	assert.Equal(t, 2024, *res.Year)
	require.Len(t, res.Rankings, 1)
	assert.Equal(t, int64(3), res.Rankings[0].VisitCount)

	res, err = env.rankings.MostVisited(ctx, RankingParams{Period: PeriodMonth})
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, res.Period)
	assert.Nil(t, res.Year)
	require.Len(t, res.Rankings, 1)
	assert.Equal(t, "B", res.Rankings[0].Name)
	assert.Equal(t, int64(1), res.Rankings[0].VisitCount)
}

func TestRankings_LimitAndTop5(t *testing.T) {
	env := newEnv(t)
	u := env.user(t, "u", models.RoleUser)
	for i := 0; i < 7; i++ {
		a := env.aquarium(t, string(rune('A'+i)), "東京都", 35.7, 139.8)
		env.visitMany(t, u.ID, a.ID, repeat(3, 7-i)...)
	}

	res, err := env.rankings.MostVisited(ctx, RankingParams{})
	require.NoError(t, err)
	require.Len(t, res.Rankings, 7)
	for i, row := range res.Rankings {
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, i < 5, row.IsTop5, row.Name)
	}

	res, err = env.rankings.MostVisited(ctx, RankingParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Rankings, 2)
	assert.Equal(t, "A", res.Rankings[0].Name)
}

func TestHighestRated_MinVisits(t *testing.T) {
	env := newEnv(t)
	u := env.user(t, "u", models.RoleUser)
	five := env.aquarium(t, "Five", "東京都", 35.7, 139.8)
	ten := env.aquarium(t, "Ten", "東京都", 35.7, 139.8)
	env.visitMany(t, u.ID, five.ID, 5, 5, 5, 5, 4)
	env.visitMany(t, u.ID, ten.ID, append(repeat(4, 9), 0)...)

	res, err := env.rankings.HighestRated(ctx, RankingParams{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMinVisits, *res.MinVisits)
	require.Len(t, res.Rankings, 2)
	assert.Equal(t, "Five", res.Rankings[0].Name)
	assert.Equal(t, 4.8, res.Rankings[0].AverageRating)
	assert.Equal(t, int64(5), res.Rankings[0].RatingCount)
	assert.Equal(t, 4.0, res.Rankings[1].AverageRating)
	assert.Equal(t, int64(9), res.Rankings[1].RatingCount)

	res, err = env.rankings.HighestRated(ctx, RankingParams{MinVisits: intPtr(10)})
	require.NoError(t, err)
	require.Len(t, res.Rankings, 1)
	assert.Equal(t, "Ten", res.Rankings[0].Name)
}

func TestTrending_Window(t *testing.T) {
	env := newEnv(t)
	u := env.user(t, "u", models.RoleUser)
	a := env.aquarium(t, "A", "東京都", 35.7, 139.8)
	b := env.aquarium(t, "B", "東京都", 35.7, 139.8)
	old := env.aquarium(t, "Old", "東京都", 35.7, 139.8)
	env.visitMany(t, u.ID, a.ID, 4, 2)
	env.visitMany(t, u.ID, b.ID, 5, 5, 5, 5, 5)
	env.visit(t, u.ID, old.ID, testNow.AddDate(0, -2, 0), 5)

	res, err := env.rankings.Trending(ctx, RankingParams{Days: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, *res.Days)
	require.Len(t, res.Rankings, 2)
	assert.Equal(t, "B", res.Rankings[0].Name)
	assert.Equal(t, int64(3), res.Rankings[0].RecentVisitCount)
	assert.Equal(t, "A", res.Rankings[1].Name)
	assert.Equal(t, int64(2), res.Rankings[1].RecentVisitCount)
	assert.Equal(t, 3.0, res.Rankings[1].AverageRating)

	res, err = env.rankings.Trending(ctx, RankingParams{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTrendingDays, *res.Days)
	assert.Len(t, res.Rankings, 2)
}

func TestWishlistChampions(t *testing.T) {
	env := newEnv(t)
	u1 := env.user(t, "u1", models.RoleUser)
	u2 := env.user(t, "u2", models.RoleUser)
	a := env.aquarium(t, "A", "東京都", 35.7, 139.8)
	b := env.aquarium(t, "B", "東京都", 35.7, 139.8)
	env.aquarium(t, "Nobody", "東京都", 35.7, 139.8)
	for _, item := range []models.WishlistItem{
		{UserID: u1.ID, AquariumID: b.ID},
		{UserID: u2.ID, AquariumID: b.ID},
		{UserID: u1.ID, AquariumID: a.ID},
	} {
		require.NoError(t, env.db.Create(&item).Error)
	}
	env.visitMany(t, u1.ID, b.ID, 5, 4)

	res, err := env.rankings.WishlistChampions(ctx, RankingParams{})
	require.NoError(t, err)
	require.Len(t, res.Rankings, 2)
	assert.Equal(t, "B", res.Rankings[0].Name)
	assert.Equal(t, int64(2), res.Rankings[0].WishlistCount)
	assert.Equal(t, 4.5, res.Rankings[0].AverageRating)
	assert.Equal(t, int64(2), res.Rankings[0].VisitCount)
	assert.Equal(t, "A", res.Rankings[1].Name)
	assert.Equal(t, 0.0, res.Rankings[1].AverageRating)
	assert.Equal(t, int64(0), res.Rankings[1].VisitCount)
}

func TestHiddenGems_Scenario(t *testing.T) {
	env := newEnv(t)
	u := env.user(t, "u", models.RoleUser)
	gem := env.aquarium(t, "Gem", "東京都", 35.7, 139.8)
	crowd := env.aquarium(t, "Crowd", "東京都", 35.7, 139.8)
	single := env.aquarium(t, "Single", "東京都", 35.7, 139.8)
	env.visitMany(t, u.ID, gem.ID, 5, 5, 5)
	env.visitMany(t, u.ID, crowd.ID, repeat(3, 20)...)
	env.visitMany(t, u.ID, single.ID, 5)

	res, err := env.rankings.HiddenGems(ctx, RankingParams{MinRating: floatPtr(4.5), MaxVisits: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 4.5, *res.MinRating)
	assert.Equal(t, 10, *res.MaxVisits)
	require.Len(t, res.Rankings, 1)
	row := res.Rankings[0]
	assert.Equal(t, "Gem", row.Name)
	assert.Equal(t, 5.0, row.AverageRating)
	assert.Equal(t, int64(3), row.VisitCount)
	assert.Equal(t, int64(3), row.RatingCount)
	assert.True(t, row.IsTop5)
}
