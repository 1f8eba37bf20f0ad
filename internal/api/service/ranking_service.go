package service

import (
	"context"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
	DefaultMinVisits    = 3
	DefaultTrendingDays = 30
	DefaultMinRating    = 4.5
	DefaultMaxVisits    = 10

	PeriodAll   = "all"
	PeriodYear  = "year"
	PeriodMonth = "month"
)

// RankingParams are the query parameters of the /rankings endpoints.
// Nil fields take their defaults; each leaderboard reads only its own.
type RankingParams struct {
	Prefecture string
	Limit      int
	Period     string
	Year       *int
	MinVisits  *int
	Days       *int
	MinRating  *float64
	MaxVisits  *int
}

// RankingResult is a leaderboard plus the parameters it was computed with.
type RankingResult[T any] struct {
	Rankings   []T      `json:"rankings"`
	Period     string   `json:"period,omitempty"`
	Year       *int     `json:"year,omitempty"`
	MinVisits  *int     `json:"min_visits,omitempty"`
	Days       *int     `json:"days,omitempty"`
	MinRating  *float64 `json:"min_rating,omitempty"`
	MaxVisits  *int     `json:"max_visits,omitempty"`
	Prefecture *string  `json:"prefecture"`
}

type RankingService interface {
	MostVisited(ctx context.Context, p RankingParams) (*RankingResult[dto.MostVisitedRow], error)
	HighestRated(ctx context.Context, p RankingParams) (*RankingResult[dto.HighestRatedRow], error)
	Trending(ctx context.Context, p RankingParams) (*RankingResult[dto.TrendingRow], error)
	WishlistChampions(ctx context.Context, p RankingParams) (*RankingResult[dto.WishlistChampionRow], error)
	HiddenGems(ctx context.Context, p RankingParams) (*RankingResult[dto.HiddenGemRow], error)
}

type rankingService struct {
	repo        repository.RankingRepository
	aquariums   repository.AquariumRepository
	attachments repository.AttachmentRepository
	store       storage.Store
	now         func() time.Time
}

func NewRankingService(
	repo repository.RankingRepository,
	aquariums repository.AquariumRepository,
	attachments repository.AttachmentRepository,
	store storage.Store,
	now func() time.Time,
) RankingService {
	if now == nil {
		now = time.Now
	}
	return &rankingService{repo: repo, aquariums: aquariums, attachments: attachments, store: store, now: now}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		return MaxRankingLimit
	}
	return limit
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func (p RankingParams) filter() repository.RankingFilter {
	return repository.RankingFilter{Prefecture: p.Prefecture, Limit: clampLimit(p.Limit)}
}

func (p RankingParams) prefecture() *string {
	if p.Prefecture == "" {
		return nil
	}
	pref := p.Prefecture
	return &pref
}

// ranked is one aggregate row joined with its aquarium and rank metadata.
type ranked struct {
	base repository.AggregateRow
	row  dto.RankingBase
}

// decorate loads the aquariums of rows and their representative photos,
// keeping the aggregate order. Rows whose aquarium vanished are dropped.
func (s *rankingService) decorate(ctx context.Context, rows []repository.AggregateRow) ([]ranked, error) {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.AquariumID
	}
	list, err := s.aquariums.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Aquarium, len(list))
	for _, a := range list {
		byID[a.ID] = a
	}

	// a failed photo lookup only costs the thumbnails
	keys, err := s.attachments.LatestVisitPhotoKeys(ctx, ids)
	if err != nil {
		keys = nil
	}

	out := make([]ranked, 0, len(rows))
	for _, r := range rows {
		a, ok := byID[r.AquariumID]
		if !ok {
			continue
		}
		url := ""
		if key, ok := keys[a.ID]; ok {
			url = s.store.URL(key)
		}
		out = append(out, ranked{base: r, row: dto.NewRankingBase(len(out)+1, a, url)})
	}
	return out, nil
}

func (s *rankingService) MostVisited(ctx context.Context, p RankingParams) (*RankingResult[dto.MostVisitedRow], error) {
	now := s.now().UTC()
	res := &RankingResult[dto.MostVisitedRow]{Period: PeriodAll, Prefecture: p.prefecture()}

	var period *repository.TimeRange
	switch p.Period {
	case PeriodYear:
		year := intOr(p.Year, now.Year())
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		period = &repository.TimeRange{From: from, To: from.AddDate(1, 0, 0)}
		res.Period = PeriodYear
		res.Year = &year
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		period = &repository.TimeRange{From: from, To: from.AddDate(0, 1, 0)}
		res.Period = PeriodMonth
	}

	rows, err := s.repo.MostVisited(ctx, p.filter(), period)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.row.ID
	}
	latest, err := s.repo.LatestVisitDates(ctx, ids)
	if err != nil {
		return nil, err
	}

	res.Rankings = make([]dto.MostVisitedRow, 0, len(items))
	for _, it := range items {
		res.Rankings = append(res.Rankings, dto.MostVisitedRow{
			RankingBase: it.row,
			VisitCount:  it.base.VisitCount,
			LatestVisit: dto.DatePtr(latest[it.row.ID]),
		})
	}
	return res, nil
}

func (s *rankingService) HighestRated(ctx context.Context, p RankingParams) (*RankingResult[dto.HighestRatedRow], error) {
	minVisits := intOr(p.MinVisits, DefaultMinVisits)
	rows, err := s.repo.HighestRated(ctx, p.filter(), minVisits)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}

	res := &RankingResult[dto.HighestRatedRow]{
		Rankings:   make([]dto.HighestRatedRow, 0, len(items)),
		MinVisits:  &minVisits,
		Prefecture: p.prefecture(),
	}
	for _, it := range items {
		res.Rankings = append(res.Rankings, dto.HighestRatedRow{
			RankingBase:   it.row,
			AverageRating: dto.AverageOrZero(it.base.AverageRating),
			RatingCount:   it.base.RatingCount,
		})
	}
	return res, nil
}

func (s *rankingService) Trending(ctx context.Context, p RankingParams) (*RankingResult[dto.TrendingRow], error) {
	days := intOr(p.Days, DefaultTrendingDays)
	if days < 0 {
		days = DefaultTrendingDays
	}
	since := models.DateOnly(s.now().UTC().AddDate(0, 0, -days))

	rows, err := s.repo.Trending(ctx, p.filter(), since)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}

	res := &RankingResult[dto.TrendingRow]{
		Rankings:   make([]dto.TrendingRow, 0, len(items)),
		Days:       &days,
		Prefecture: p.prefecture(),
	}
	for _, it := range items {
		res.Rankings = append(res.Rankings, dto.TrendingRow{
			RankingBase:      it.row,
			RecentVisitCount: it.base.VisitCount,
			AverageRating:    dto.AverageOrZero(it.base.AverageRating),
		})
	}
	return res, nil
}

func (s *rankingService) WishlistChampions(ctx context.Context, p RankingParams) (*RankingResult[dto.WishlistChampionRow], error) {
	rows, err := s.repo.WishlistChampions(ctx, p.filter())
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.row.ID
	}
	stats, err := s.aquariums.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := &RankingResult[dto.WishlistChampionRow]{
		Rankings:   make([]dto.WishlistChampionRow, 0, len(items)),
		Prefecture: p.prefecture(),
	}
	for _, it := range items {
		st := stats[it.row.ID]
		res.Rankings = append(res.Rankings, dto.WishlistChampionRow{
			RankingBase:   it.row,
			WishlistCount: it.base.WishlistCount,
			AverageRating: dto.AverageOrZero(st.AverageRating),
			VisitCount:    st.VisitCount,
		})
	}
	return res, nil
}

func (s *rankingService) HiddenGems(ctx context.Context, p RankingParams) (*RankingResult[dto.HiddenGemRow], error) {
	minRating := DefaultMinRating
	if p.MinRating != nil {
		minRating = *p.MinRating
	}
	maxVisits := intOr(p.MaxVisits, DefaultMaxVisits)

	rows, err := s.repo.HiddenGems(ctx, p.filter(), minRating, maxVisits)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}

	res := &RankingResult[dto.HiddenGemRow]{
		Rankings:   make([]dto.HiddenGemRow, 0, len(items)),
		MinRating:  &minRating,
		MaxVisits:  &maxVisits,
		Prefecture: p.prefecture(),
	}
	for _, it := range items {
		res.Rankings = append(res.Rankings, dto.HiddenGemRow{
			RankingBase:   it.row,
			AverageRating: dto.AverageOrZero(it.base.AverageRating),
			VisitCount:    it.base.VisitCount,
			RatingCount:   it.base.RatingCount,
		})
	}
	return res, nil
}
