package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maho-na510/aquarium-visit-log/database"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/config"
	"github.com/maho-na510/aquarium-visit-log/internal/geo"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	ctx = context.Background()
	// fixed "now" for services that read the clock
	testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
)

type fakeOG struct {
	calls []string
	image *string
}

func (f *fakeOG) Fetch(_ context.Context, pageURL string) *string {
	f.calls = append(f.calls, pageURL)
	return f.image
}

type testEnv struct {
	db    *gorm.DB
	store *storage.DiskStore
	og    *fakeOG

	aquariums AquariumService
	rankings  RankingService
	visits    VisitService
	wishlist  WishlistService
	users     UserService
	auth      AuthService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := database.OpenSQLite(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := storage.NewDiskStore(filepath.Join(dir, "uploads"), "http://test.local")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	aquariumRepo := repository.NewAquariumRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	og := &fakeOG{}

	authSvc := NewAuthService(userRepo, &config.Config{
		JWTSecret:  strings.Repeat("s", 32),
		SessionTTL: time.Hour,
	}, logger)
	authSvc.(*authService).now = func() time.Time { return testNow }

	return &testEnv{
		db:    db,
		store: store,
		og:    og,
		aquariums: NewAquariumService(aquariumRepo, visitRepo, wishlistRepo, attachmentRepo,
			geo.NewSQLIndex(db), og, store, logger),
		rankings: NewRankingService(repository.NewRankingRepository(db), aquariumRepo, attachmentRepo, store,
			func() time.Time { return testNow }),
		visits:   NewVisitService(visitRepo, aquariumRepo, attachmentRepo, store, logger),
		wishlist: NewWishlistService(wishlistRepo, aquariumRepo),
		users:    NewUserService(userRepo, visitRepo, wishlistRepo, aquariumRepo, attachmentRepo, store, logger),
		auth:     authSvc,
	}
}

func (e *testEnv) user(t *testing.T, username, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Name:     username,
		Password: "x",
		Role:     role,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) aquarium(t *testing.T, name, prefecture string, lat, lng float64) *models.Aquarium {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Aquarium{}).Count(&n).Error)
	a := &models.Aquarium{
		Name:       name,
		Address:    prefecture + " " + name,
		Prefecture: prefecture,
		Latitude:   lat,
		Longitude:  lng,
		CreatedAt:  testNow.AddDate(0, -1, 0).Add(time.Duration(n) * time.Hour),
	}
	require.NoError(t, e.db.Create(a).Error)
	return a
}

func (e *testEnv) visit(t *testing.T, userID, aquariumID int64, visitedAt time.Time, rating int) *models.Visit {
	t.Helper()
	v := &models.Visit{UserID: userID, AquariumID: aquariumID, VisitedAt: visitedAt}
	if rating > 0 {
		v.Rating = &rating
	}
	require.NoError(t, e.db.Create(v).Error)
	return v
}

// visitMany records one visit per rating on consecutive days before testNow.
func (e *testEnv) visitMany(t *testing.T, userID, aquariumID int64, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		e.visit(t, userID, aquariumID, testNow.AddDate(0, 0, -(i+1)), r)
	}
}

// photo stores a blob on disk and attaches it.
func (e *testEnv) photo(t *testing.T, recordType string, recordID int64) *models.Attachment {
	t.Helper()
	key := storage.NewKey("p.jpg")
	_, err := e.store.Put(ctx, key, strings.NewReader("jpeg"))
	require.NoError(t, err)
	att := &models.Attachment{
		RecordType: recordType,
		RecordID:   recordID,
		Name:       models.SlotPhotos,
		Key:        key,
		Filename:   "p.jpg",
	}
	require.NoError(t, e.db.Create(att).Error)
	return att
}

func (e *testEnv) blobExists(key string) bool {
	_, err := os.Stat(filepath.Join(e.store.Root(), key))
	return err == nil
}

func uploads(n int, ext string) []Upload {
	out := make([]Upload, n)
	for i := range out {
		out[i] = Upload{
			Filename:    "file" + ext,
			ContentType: "application/octet-stream",
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader([]byte("data"))), nil
			},
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(b bool) *bool { return &b }

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Messages
}
