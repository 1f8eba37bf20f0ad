package repository

import (
	"testing"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAquariumList_DefaultOrderIsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	createAquarium(t, db, "A", "東京都")
	createAquarium(t, db, "B", "大阪府")
	createAquarium(t, db, "C", "東京都")

	list, total, err := repo.List(ctx, AquariumQuery{Page: 1, Per: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"C", "B", "A"}, aquariumNames(list))
}

func TestAquariumList_PrefectureFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	createAquarium(t, db, "A", "東京都")
	createAquarium(t, db, "B", "大阪府")
	createAquarium(t, db, "C", "東京都")

	list, total, err := repo.List(ctx, AquariumQuery{Prefecture: "東京都", Page: 1, Per: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"C", "A"}, aquariumNames(list))
}

func TestAquariumList_VisitedFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	user := createUser(t, db, "viewer")
	other := createUser(t, db, "other")
	a := createAquarium(t, db, "A", "東京都")
	b := createAquarium(t, db, "B", "東京都")
	createAquarium(t, db, "C", "東京都")
	createVisit(t, db, user.ID, a.ID, day0, 4)
	createVisit(t, db, other.ID, b.ID, day0, 4)

	t.Run("visited", func(t *testing.T) {
		list, total, err := repo.List(ctx, AquariumQuery{ViewerID: &user.ID, Visited: boolPtr(true), Page: 1, Per: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{"A"}, aquariumNames(list))
	})

	t.Run("not visited", func(t *testing.T) {
		list, total, err := repo.List(ctx, AquariumQuery{ViewerID: &user.ID, Visited: boolPtr(false), Page: 1, Per: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"C", "B"}, aquariumNames(list))
	})

	t.Run("anonymous ignores the filter", func(t *testing.T) {
		list, _, err := repo.List(ctx, AquariumQuery{Visited: boolPtr(true), Page: 1, Per: 20})
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})
}

func TestAquariumList_SortByRatingPutsUnratedLast(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	user := createUser(t, db, "u")
	low := createAquarium(t, db, "low", "東京都")
	createAquarium(t, db, "unrated", "東京都")
	high := createAquarium(t, db, "high", "東京都")
	createVisits(t, db, user.ID, low.ID, 2, 3)
	createVisits(t, db, user.ID, high.ID, 5, 4)

	list, total, err := repo.List(ctx, AquariumQuery{Sort: SortRating, Page: 1, Per: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"high", "low", "unrated"}, aquariumNames(list))
}

func TestAquariumList_SortByVisitsIsStable(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	user := createUser(t, db, "u")
	a := createAquarium(t, db, "A", "東京都")
	b := createAquarium(t, db, "B", "東京都")
	c := createAquarium(t, db, "C", "東京都")
	createVisits(t, db, user.ID, a.ID, 1)
	createVisits(t, db, user.ID, b.ID, 1, 1, 1)
	createVisits(t, db, user.ID, c.ID, 1)

	q := AquariumQuery{Sort: SortVisits, Page: 1, Per: 20}
	first, _, err := repo.List(ctx, q)
	require.NoError(t, err)
	second, _, err := repo.List(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, aquariumNames(first))
	assert.Equal(t, aquariumNames(first), aquariumNames(second))
}

func TestAquariumList_SortByPrefectureNorthToSouth(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	createAquarium(t, db, "美ら海", "沖縄県")
	createAquarium(t, db, "海外館", "ハワイ")
	createAquarium(t, db, "旭山", "北海道")
	createAquarium(t, db, "すみだ", "東京都")
	createAquarium(t, db, "サンシャイン", "東京都")

	list, _, err := repo.List(ctx, AquariumQuery{Sort: SortPrefecture, Page: 1, Per: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"旭山", "すみだ", "サンシャイン", "美ら海", "海外館"}, aquariumNames(list))
}

func TestAquariumList_Distance(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	a := createAquarium(t, db, "A", "東京都")
	createAquarium(t, db, "B", "東京都")
	c := createAquarium(t, db, "C", "東京都")

	t.Run("ordered by hits", func(t *testing.T) {
		near := []geo.Hit{{ID: c.ID, DistanceKm: 1}, {ID: a.ID, DistanceKm: 3}}
		list, total, err := repo.List(ctx, AquariumQuery{Sort: SortDistance, ByDistance: true, Near: near, Page: 1, Per: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"C", "A"}, aquariumNames(list))
	})

	t.Run("nothing in range", func(t *testing.T) {
		list, total, err := repo.List(ctx, AquariumQuery{Sort: SortDistance, ByDistance: true, Page: 1, Per: 20})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})
}

func TestAquariumList_Pagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		createAquarium(t, db, name, "東京都")
	}

	list, total, err := repo.List(ctx, AquariumQuery{Page: 2, Per: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []string{"C", "B"}, aquariumNames(list))
}

func TestAquariumSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	user := createUser(t, db, "u")
	sumida := createAquarium(t, db, "すみだ水族館", "東京都")
	createAquarium(t, db, "海遊館", "大阪府")
	createAquarium(t, db, "品川アクアパーク", "東京都")
	v := createVisit(t, db, user.ID, sumida.ID, day0, 5)
	v.GoodExhibits = []string{"ペンギン", "クラゲ"}
	require.NoError(t, db.Save(v).Error)

	list, total, err := repo.Search(ctx, "水族館", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"すみだ水族館"}, aquariumNames(list))

	list, _, err = repo.Search(ctx, "東京都", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"すみだ水族館", "品川アクアパーク"}, aquariumNames(list))

	list, _, err = repo.Search(ctx, "東京都", "クラゲ", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"すみだ水族館"}, aquariumNames(list))
}

func TestAquariumSearch_CaseSensitiveNameOrAddressOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	kaiyukan := createAquarium(t, db, "Kaiyukan", "大阪府")
	kaiyukan.Description = "whale shark"
	require.NoError(t, db.Save(kaiyukan).Error)

	list, total, err := repo.Search(ctx, "Kaiyu", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"Kaiyukan"}, aquariumNames(list))

	list, total, err = repo.Search(ctx, "kaiyukan", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, list)

	// description is not searched
	_, total, err = repo.Search(ctx, "whale", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestAquariumStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	user := createUser(t, db, "u")
	a := createAquarium(t, db, "A", "東京都")
	b := createAquarium(t, db, "B", "東京都")
	createVisits(t, db, user.ID, a.ID, 5, 4, 0)

	stats, err := repo.Stats(ctx, []int64{a.ID, b.ID})
	require.NoError(t, err)

	require.Contains(t, stats, a.ID)
	assert.Equal(t, int64(3), stats[a.ID].VisitCount)
	require.NotNil(t, stats[a.ID].AverageRating)
	assert.InDelta(t, 4.5, *stats[a.ID].AverageRating, 0.001)
	assert.NotContains(t, stats, b.ID)
}

func TestAquariumDelete_Cascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	user := createUser(t, db, "u")
	a := createAquarium(t, db, "A", "東京都")
	keep := createAquarium(t, db, "B", "東京都")
	v := createVisit(t, db, user.ID, a.ID, day0, 5)
	createVisit(t, db, user.ID, keep.ID, day0, 5)
	createPhoto(t, db, models.RecordAquarium, a.ID, "a.jpg")
	createPhoto(t, db, models.RecordVisit, v.ID, "v.jpg")
	require.NoError(t, db.Create(&models.WishlistItem{UserID: user.ID, AquariumID: a.ID}).Error)
	require.NoError(t, db.Model(user).Association("FavoriteAquariums").Append(a))

	keys, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.jpg", "v.jpg"}, keys)

	var n int64
	db.Model(&models.Visit{}).Where("aquarium_id = ?", a.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.WishlistItem{}).Where("aquarium_id = ?", a.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Attachment{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Visit{}).Count(&n)
	assert.Equal(t, int64(1), n)

	_, err = repo.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAquariumFindByIDsKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	a := createAquarium(t, db, "A", "東京都")
	b := createAquarium(t, db, "B", "東京都")

	list, err := repo.FindByIDs(ctx, []int64{b.ID, 999, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, aquariumNames(list))
}

func TestAquariumWebsites(t *testing.T) {
	db := newTestDB(t)
	repo := NewAquariumRepository(db)
	a := createAquarium(t, db, "A", "東京都")
	b := createAquarium(t, db, "B", "東京都")
	c := createAquarium(t, db, "C", "東京都")
	createAquarium(t, db, "D", "東京都")
	require.NoError(t, db.Model(a).Update("website", "https://b.example").Error)
	require.NoError(t, db.Model(b).Update("website", "https://a.example").Error)
	require.NoError(t, db.Model(c).Update("website", "https://a.example").Error)

	urls, err := repo.Websites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)
}
