package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"gorm.io/gorm"
)

// RankingFilter narrows the aquariums before aggregation and caps the result.
type RankingFilter struct {
	Prefecture string
	Limit      int
}

// TimeRange is the half-open interval [From, To).
type TimeRange struct {
	From time.Time
	To   time.Time
}

// AggregateRow is one aquarium of a leaderboard with its aggregates.
// AverageRating is nil when no counted visit carries a rating.
type AggregateRow struct {
	AquariumID    int64
	VisitCount    int64
	RatingCount   int64
	AverageRating *float64
	WishlistCount int64
}

const visitAggregates = "aquariums.id AS aquarium_id, " +
	"COUNT(visits.id) AS visit_count, " +
	"COUNT(visits.rating) AS rating_count, " +
	"CAST(AVG(visits.rating) AS FLOAT) AS average_rating"

type RankingRepository interface {
	MostVisited(ctx context.Context, f RankingFilter, period *TimeRange) ([]AggregateRow, error)
	HighestRated(ctx context.Context, f RankingFilter, minVisits int) ([]AggregateRow, error)
	Trending(ctx context.Context, f RankingFilter, since time.Time) ([]AggregateRow, error)
	WishlistChampions(ctx context.Context, f RankingFilter) ([]AggregateRow, error)
	HiddenGems(ctx context.Context, f RankingFilter, minRating float64, maxVisits int) ([]AggregateRow, error)
	LatestVisitDates(ctx context.Context, aquariumIDs []int64) (map[int64]time.Time, error)
}

type rankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) aquariums(ctx context.Context, f RankingFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Table("aquariums")
	if f.Prefecture != "" {
		q = q.Where("aquariums.prefecture = ?", f.Prefecture)
	}
	return q
}

func (r *rankingRepository) run(q *gorm.DB, f RankingFilter, name string) ([]AggregateRow, error) {
	var rows []AggregateRow
	if err := q.Order("aquariums.id ASC").Limit(f.Limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%s ranking: %w", name, err)
	}
	return rows, nil
}

// MostVisited counts visits per aquarium. With a period only visits inside
// it count and aquariums without such visits drop out.
func (r *rankingRepository) MostVisited(ctx context.Context, f RankingFilter, period *TimeRange) ([]AggregateRow, error) {
	q := r.aquariums(ctx, f).
		Select(visitAggregates).
		Joins("LEFT JOIN visits ON visits.aquarium_id = aquariums.id")
	if period != nil {
		q = q.Where("visits.visited_at >= ? AND visits.visited_at < ?", period.From, period.To)
	}
	q = q.Group("aquariums.id").Order("COUNT(visits.id) DESC")
	return r.run(q, f, "most visited")
}

func (r *rankingRepository) HighestRated(ctx context.Context, f RankingFilter, minVisits int) ([]AggregateRow, error) {
	q := r.aquariums(ctx, f).
		Select(visitAggregates).
		Joins("JOIN visits ON visits.aquarium_id = aquariums.id").
		Group("aquariums.id").
		Having("COUNT(visits.id) >= ?", minVisits).
		Order("AVG(visits.rating) DESC NULLS LAST")
	return r.run(q, f, "highest rated")
}

func (r *rankingRepository) Trending(ctx context.Context, f RankingFilter, since time.Time) ([]AggregateRow, error) {
	q := r.aquariums(ctx, f).
		Select(visitAggregates).
		Joins("JOIN visits ON visits.aquarium_id = aquariums.id").
		Where("visits.visited_at >= ?", since).
		Group("aquariums.id").
		Order("COUNT(visits.id) DESC")
	return r.run(q, f, "trending")
}

func (r *rankingRepository) WishlistChampions(ctx context.Context, f RankingFilter) ([]AggregateRow, error) {
	q := r.aquariums(ctx, f).
		Select("aquariums.id AS aquarium_id, COUNT(wishlist_items.id) AS wishlist_count").
		Joins("LEFT JOIN wishlist_items ON wishlist_items.aquarium_id = aquariums.id").
		Group("aquariums.id").
		Having("COUNT(wishlist_items.id) > 0").
		Order("COUNT(wishlist_items.id) DESC")
	return r.run(q, f, "wishlist champions")
}

func (r *rankingRepository) HiddenGems(ctx context.Context, f RankingFilter, minRating float64, maxVisits int) ([]AggregateRow, error) {
	q := r.aquariums(ctx, f).
		Select(visitAggregates).
		Joins("JOIN visits ON visits.aquarium_id = aquariums.id").
		Group("aquariums.id").
		Having("AVG(visits.rating) >= ? AND COUNT(visits.id) <= ? AND COUNT(visits.id) >= ?", minRating, maxVisits, 2).
		Order("AVG(visits.rating) DESC NULLS LAST")
	return r.run(q, f, "hidden gems")
}

func (r *rankingRepository) LatestVisitDates(ctx context.Context, aquariumIDs []int64) (map[int64]time.Time, error) {
	latest := make(map[int64]time.Time, len(aquariumIDs))
	if len(aquariumIDs) == 0 {
		return latest, nil
	}
	var visits []models.Visit
	if err := r.db.WithContext(ctx).
		Select("aquarium_id", "visited_at").
		Where("aquarium_id IN ?", aquariumIDs).
		Order("visited_at DESC").
		Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("latest visit dates: %w", err)
	}
	for _, v := range visits {
		if _, ok := latest[v.AquariumID]; !ok {
			latest[v.AquariumID] = v.VisitedAt
		}
	}
	return latest, nil
}
