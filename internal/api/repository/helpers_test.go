package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/maho-na510/aquarium-visit-log/database"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	ctx  = context.Background()
	day0 = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
)

func newTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Name:     username,
		Password: "x",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// createAquarium inserts aquariums with increasing created_at so the
// default order is the reverse of creation.
func createAquarium(t testing.TB, db *gorm.DB, name, prefecture string) *models.Aquarium {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Aquarium{}).Count(&n).Error)
	a := &models.Aquarium{
		Name:       name,
		Address:    prefecture + " " + name,
		Prefecture: prefecture,
		Latitude:   35,
		Longitude:  139,
		CreatedAt:  day0.Add(time.Duration(n) * time.Hour),
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func createVisit(t testing.TB, db *gorm.DB, userID, aquariumID int64, visitedAt time.Time, rating int) *models.Visit {
	t.Helper()
	v := &models.Visit{UserID: userID, AquariumID: aquariumID, VisitedAt: visitedAt}
	if rating > 0 {
		v.Rating = &rating
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

func createVisits(t testing.TB, db *gorm.DB, userID, aquariumID int64, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		createVisit(t, db, userID, aquariumID, day0.AddDate(0, 0, i), r)
	}
}

func createPhoto(t testing.TB, db *gorm.DB, recordType string, recordID int64, key string) *models.Attachment {
	t.Helper()
	att := &models.Attachment{
		RecordType: recordType,
		RecordID:   recordID,
		Name:       models.SlotPhotos,
		Key:        key,
		Filename:   key,
	}
	require.NoError(t, db.Create(att).Error)
	return att
}

func aquariumNames(list []models.Aquarium) []string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Name
	}
	return names
}

func boolPtr(b bool) *bool { return &b }

func int64Ptr(v int64) *int64 { return &v }
