package handler_test

import (
	"context"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICES ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in dto.RegisterInput) (*models.User, string, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) ParseToken(token string) (*service.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockAquariumService struct {
	mock.Mock
}

func (m *MockAquariumService) List(ctx context.Context, viewer *models.User, p service.AquariumListParams) (*service.AquariumPage, error) {
	args := m.Called(ctx, viewer, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AquariumPage), args.Error(1)
}

func (m *MockAquariumService) Search(ctx context.Context, viewer *models.User, q, exhibit string, page, per int) (*service.AquariumPage, error) {
	args := m.Called(ctx, viewer, q, exhibit, page, per)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AquariumPage), args.Error(1)
}

func (m *MockAquariumService) Nearby(ctx context.Context, viewer *models.User, lat, lng *float64, distanceKm float64) ([]dto.AquariumIndex, error) {
	args := m.Called(ctx, viewer, lat, lng, distanceKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AquariumIndex), args.Error(1)
}

func (m *MockAquariumService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.AquariumDetail, error) {
	args := m.Called(ctx, viewer, id)
	return detailOrNil(args)
}

func (m *MockAquariumService) OGImage(ctx context.Context, id int64) (*string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockAquariumService) Create(ctx context.Context, viewer *models.User, in dto.AquariumInput) (*dto.AquariumDetail, error) {
	args := m.Called(ctx, viewer, in)
	return detailOrNil(args)
}

func (m *MockAquariumService) Update(ctx context.Context, viewer *models.User, id int64, in dto.AquariumInput) (*dto.AquariumDetail, error) {
	args := m.Called(ctx, viewer, id, in)
	return detailOrNil(args)
}

func (m *MockAquariumService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

func (m *MockAquariumService) UploadPhotos(ctx context.Context, viewer *models.User, id int64, photos []service.Upload) (*dto.AquariumDetail, error) {
	args := m.Called(ctx, viewer, id, photos)
	return detailOrNil(args)
}

func (m *MockAquariumService) DeletePhoto(ctx context.Context, viewer *models.User, id, photoID int64) (*dto.AquariumDetail, error) {
	args := m.Called(ctx, viewer, id, photoID)
	return detailOrNil(args)
}

func (m *MockAquariumService) SetHeaderPhoto(ctx context.Context, viewer *models.User, id int64, photoID *int64) (*dto.AquariumDetail, error) {
	args := m.Called(ctx, viewer, id, photoID)
	return detailOrNil(args)
}

func detailOrNil(args mock.Arguments) (*dto.AquariumDetail, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AquariumDetail), args.Error(1)
}

type MockRankingService struct {
	mock.Mock
}

func (m *MockRankingService) MostVisited(ctx context.Context, p service.RankingParams) (*service.RankingResult[dto.MostVisitedRow], error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RankingResult[dto.MostVisitedRow]), args.Error(1)
}

func (m *MockRankingService) HighestRated(ctx context.Context, p service.RankingParams) (*service.RankingResult[dto.HighestRatedRow], error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RankingResult[dto.HighestRatedRow]), args.Error(1)
}

func (m *MockRankingService) Trending(ctx context.Context, p service.RankingParams) (*service.RankingResult[dto.TrendingRow], error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RankingResult[dto.TrendingRow]), args.Error(1)
}

func (m *MockRankingService) WishlistChampions(ctx context.Context, p service.RankingParams) (*service.RankingResult[dto.WishlistChampionRow], error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RankingResult[dto.WishlistChampionRow]), args.Error(1)
}

func (m *MockRankingService) HiddenGems(ctx context.Context, p service.RankingParams) (*service.RankingResult[dto.HiddenGemRow], error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RankingResult[dto.HiddenGemRow]), args.Error(1)
}

type MockVisitService struct {
	mock.Mock
}

func (m *MockVisitService) List(ctx context.Context, viewer *models.User, p service.VisitListParams) (*service.VisitPage, error) {
	args := m.Called(ctx, viewer, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VisitPage), args.Error(1)
}

func (m *MockVisitService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.VisitDetail, error) {
	args := m.Called(ctx, viewer, id)
	return visitOrNil(args)
}

func (m *MockVisitService) Create(ctx context.Context, viewer *models.User, in dto.VisitInput, files service.VisitMediaUploads) (*dto.VisitDetail, error) {
	args := m.Called(ctx, viewer, in, files)
	return visitOrNil(args)
}

func (m *MockVisitService) Update(ctx context.Context, viewer *models.User, id int64, in dto.VisitInput, files service.VisitMediaUploads) (*dto.VisitDetail, error) {
	args := m.Called(ctx, viewer, id, in, files)
	return visitOrNil(args)
}

func (m *MockVisitService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

func (m *MockVisitService) UploadMedia(ctx context.Context, viewer *models.User, id int64, files service.VisitMediaUploads) (*dto.VisitDetail, error) {
	args := m.Called(ctx, viewer, id, files)
	return visitOrNil(args)
}

func visitOrNil(args mock.Arguments) (*dto.VisitDetail, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VisitDetail), args.Error(1)
}

type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) List(ctx context.Context, viewer *models.User, page, per int) (*service.WishlistPage, error) {
	args := m.Called(ctx, viewer, page, per)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WishlistPage), args.Error(1)
}

func (m *MockWishlistService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.WishlistItemDetail, error) {
	args := m.Called(ctx, viewer, id)
	return wishlistItemOrNil(args)
}

func (m *MockWishlistService) Create(ctx context.Context, viewer *models.User, in dto.WishlistItemInput) (*dto.WishlistItemDetail, error) {
	args := m.Called(ctx, viewer, in)
	return wishlistItemOrNil(args)
}

func (m *MockWishlistService) Update(ctx context.Context, viewer *models.User, id int64, in dto.WishlistItemInput) (*dto.WishlistItemDetail, error) {
	args := m.Called(ctx, viewer, id, in)
	return wishlistItemOrNil(args)
}

func (m *MockWishlistService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

func wishlistItemOrNil(args mock.Arguments) (*dto.WishlistItemDetail, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WishlistItemDetail), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*dto.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfile), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, viewer *models.User, id int64, in dto.UserInput) (*dto.UserProfile, error) {
	args := m.Called(ctx, viewer, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfile), args.Error(1)
}

func (m *MockUserService) Visits(ctx context.Context, id int64, page, per int) (*service.UserVisitPage, error) {
	args := m.Called(ctx, id, page, per)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserVisitPage), args.Error(1)
}

func (m *MockUserService) Wishlist(ctx context.Context, id int64, page, per int) (*service.UserWishlistPage, error) {
	args := m.Called(ctx, id, page, per)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserWishlistPage), args.Error(1)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, viewer *models.User, id int64, avatar *service.Upload) (string, error) {
	args := m.Called(ctx, viewer, id, avatar)
	return args.String(0), args.Error(1)
}
