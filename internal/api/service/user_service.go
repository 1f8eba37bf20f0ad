package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"
)

type UserVisitPage struct {
	Visits     []dto.UserVisitItem `json:"visits"`
	Pagination *dto.Pagination     `json:"pagination"`
}

type UserWishlistPage struct {
	WishlistItems []dto.UserWishlistItem `json:"wishlist_items"`
	Pagination    *dto.Pagination        `json:"pagination"`
}

// UserService serves public profiles; only the owner may change one.
type UserService interface {
	Get(ctx context.Context, id int64) (*dto.UserProfile, error)
	Update(ctx context.Context, viewer *models.User, id int64, in dto.UserInput) (*dto.UserProfile, error)
	Visits(ctx context.Context, id int64, page, per int) (*UserVisitPage, error)
	Wishlist(ctx context.Context, id int64, page, per int) (*UserWishlistPage, error)
	// UploadAvatar replaces the avatar and returns its URL.
	UploadAvatar(ctx context.Context, viewer *models.User, id int64, avatar *Upload) (string, error)
}

type userService struct {
	repo      repository.UserRepository
	visits    repository.VisitRepository
	wishlist  repository.WishlistRepository
	aquariums repository.AquariumRepository
	media     *media
	logger    *slog.Logger
}

func NewUserService(
	repo repository.UserRepository,
	visits repository.VisitRepository,
	wishlist repository.WishlistRepository,
	aquariums repository.AquariumRepository,
	attachments repository.AttachmentRepository,
	store storage.Store,
	logger *slog.Logger,
) UserService {
	return &userService{
		repo:      repo,
		visits:    visits,
		wishlist:  wishlist,
		aquariums: aquariums,
		media:     &media{attachments: attachments, store: store, logger: logger},
		logger:    logger,
	}
}

func (s *userService) profile(ctx context.Context, u *models.User) (*dto.UserProfile, error) {
	avatar, err := s.media.avatarURL(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	visitCount, err := s.visits.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	wishlistCount, err := s.wishlist.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	p := dto.NewUserProfile(*u, avatar, visitCount, wishlistCount)
	return &p, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*dto.UserProfile, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.profile(ctx, u)
}

func requireSelf(viewer *models.User, id int64) error {
	if viewer == nil {
		return ErrUnauthenticated
	}
	if viewer.ID != id {
		return ErrForbidden
	}
	return nil
}

func (s *userService) Update(ctx context.Context, viewer *models.User, id int64, in dto.UserInput) (*dto.UserProfile, error) {
	if err := requireSelf(viewer, id); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	var errs validation
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
		if u.Name == "" {
			errs.add("Name can't be blank")
		}
	}
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
		if u.Username == "" {
			errs.add("Username can't be blank")
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if in.FavoriteAquariumIDs != nil {
		// unknown ids are dropped
		favorites, err := s.aquariums.FindByIDs(ctx, in.FavoriteAquariumIDs)
		if err != nil {
			return nil, err
		}
		u.FavoriteAquariums = favorites
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Messages: []string{"Username has already been taken"}}
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *userService) exists(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *userService) Visits(ctx context.Context, id int64, page, per int) (*UserVisitPage, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	page, per = dto.NormalizePage(page, per)
	visits, total, err := s.visits.List(ctx, repository.VisitFilter{UserID: id, Page: page, Per: per})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(visits))
	for i, v := range visits {
		ids[i] = v.ID
	}
	counts, err := s.media.attachments.CountsFor(ctx, models.RecordVisit, ids, models.SlotPhotos)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserVisitItem, 0, len(visits))
	for _, v := range visits {
		items = append(items, dto.NewUserVisitItem(v, int(counts[v.ID])))
	}
	return &UserVisitPage{Visits: items, Pagination: dto.NewPagination(page, per, total)}, nil
}

func (s *userService) Wishlist(ctx context.Context, id int64, page, per int) (*UserWishlistPage, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	page, per = dto.NormalizePage(page, per)
	list, total, err := s.wishlist.ListByUser(ctx, id, page, per)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserWishlistItem, 0, len(list))
	for _, it := range list {
		items = append(items, dto.NewUserWishlistItem(it))
	}
	return &UserWishlistPage{WishlistItems: items, Pagination: dto.NewPagination(page, per, total)}, nil
}

func (s *userService) UploadAvatar(ctx context.Context, viewer *models.User, id int64, avatar *Upload) (string, error) {
	if err := requireSelf(viewer, id); err != nil {
		return "", err
	}
	if avatar == nil {
		return "", ErrAvatarRequired
	}
	if err := s.media.replace(ctx, models.RecordUser, id, models.SlotAvatar, *avatar); err != nil {
		return "", err
	}
	return s.media.avatarURL(ctx, id)
}
