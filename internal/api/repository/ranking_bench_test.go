package repository

import (
	"fmt"
	"testing"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Run with: go test -run '^$' -bench Ranking ./internal/api/repository/
const (
	benchAquariums = 200
	benchUsers     = 50
	benchVisits    = 20
)

var benchPrefectures = []string{"東京都", "大阪府", "沖縄県", "愛知県"}

// seedRankingBench creates benchAquariums aquariums, each visited benchVisits times
// and wishlisted by a varying number of users.
func seedRankingBench(b *testing.B) *gorm.DB {
	b.Helper()
	db := newTestDB(b)

	users := make([]*models.User, benchUsers)
	for i := range users {
		users[i] = createUser(b, db, fmt.Sprintf("bench%03d", i))
	}

	var visits []models.Visit
	var wishlist []models.WishlistItem
	for i := 0; i < benchAquariums; i++ {
		a := createAquarium(b, db, fmt.Sprintf("Aquarium %03d", i), benchPrefectures[i%len(benchPrefectures)])
		for j := 0; j < benchVisits; j++ {
			rating := 1 + (i+j)%5
			visits = append(visits, models.Visit{
				UserID:     users[(i+j)%benchUsers].ID,
				AquariumID: a.ID,
				VisitedAt:  day0.AddDate(0, 0, -((i * j) % 400)),
				Rating:     &rating,
			})
		}
		for j := 0; j < i%benchUsers; j++ {
			wishlist = append(wishlist, models.WishlistItem{UserID: users[j].ID, AquariumID: a.ID})
		}
	}
	require.NoError(b, db.CreateInBatches(visits, 500).Error)
	require.NoError(b, db.CreateInBatches(wishlist, 500).Error)
	return db
}

func BenchmarkRanking(b *testing.B) {
	db := seedRankingBench(b)
	repo := NewRankingRepository(db)
	all := RankingFilter{Limit: 10}
	tokyo := RankingFilter{Prefecture: "東京都", Limit: 10}
	year := &TimeRange{From: day0.AddDate(-1, 0, 0), To: day0.AddDate(0, 0, 1)}

	boards := []struct {
		name string
		run  func() ([]AggregateRow, error)
	}{
		{"MostVisited", func() ([]AggregateRow, error) { return repo.MostVisited(ctx, all, nil) }},
		{"MostVisitedYear", func() ([]AggregateRow, error) { return repo.MostVisited(ctx, all, year) }},
		{"HighestRated", func() ([]AggregateRow, error) { return repo.HighestRated(ctx, all, 3) }},
		{"HighestRatedPrefecture", func() ([]AggregateRow, error) { return repo.HighestRated(ctx, tokyo, 3) }},
		{"Trending", func() ([]AggregateRow, error) { return repo.Trending(ctx, all, day0.AddDate(0, 0, -30)) }},
		{"WishlistChampions", func() ([]AggregateRow, error) { return repo.WishlistChampions(ctx, all) }},
		{"HiddenGems", func() ([]AggregateRow, error) { return repo.HiddenGems(ctx, all, 2.5, 30) }},
	}

	for _, board := range boards {
		b.Run(board.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				rows, err := board.run()
				if err != nil {
					b.Fatal(err)
				}
				if len(rows) > 10 {
					b.Fatalf("limit ignored: %d rows", len(rows))
				}
			}
		})
	}
}
