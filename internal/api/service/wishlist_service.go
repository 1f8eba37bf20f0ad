package service

import (
	"context"
	"errors"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"

	"gorm.io/gorm"
)

const duplicateWishlistMessage = "Aquarium はすでにリストに追加されています"

type WishlistPage struct {
	WishlistItems []dto.WishlistListItem `json:"wishlist_items"`
	Pagination    *dto.Pagination        `json:"pagination"`
}

// WishlistService manages the signed-in user's own wishlist. Items of other
// users are reported as not found.
type WishlistService interface {
	List(ctx context.Context, viewer *models.User, page, per int) (*WishlistPage, error)
	Get(ctx context.Context, viewer *models.User, id int64) (*dto.WishlistItemDetail, error)
	Create(ctx context.Context, viewer *models.User, in dto.WishlistItemInput) (*dto.WishlistItemDetail, error)
	Update(ctx context.Context, viewer *models.User, id int64, in dto.WishlistItemInput) (*dto.WishlistItemDetail, error)
	Delete(ctx context.Context, viewer *models.User, id int64) error
}

type wishlistService struct {
	repo      repository.WishlistRepository
	aquariums repository.AquariumRepository
	stats     *decorator
}

func NewWishlistService(repo repository.WishlistRepository, aquariums repository.AquariumRepository) WishlistService {
	return &wishlistService{
		repo:      repo,
		aquariums: aquariums,
		stats:     &decorator{aquariums: aquariums},
	}
}

func (s *wishlistService) List(ctx context.Context, viewer *models.User, page, per int) (*WishlistPage, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	page, per = dto.NormalizePage(page, per)
	items, total, err := s.repo.ListByUser(ctx, viewer.ID, page, per)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.AquariumID
	}
	stats, err := s.stats.stats(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.WishlistListItem, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewWishlistListItem(it, stats[it.AquariumID]))
	}
	return &WishlistPage{WishlistItems: out, Pagination: dto.NewPagination(page, per, total)}, nil
}

func (s *wishlistService) find(ctx context.Context, viewer *models.User, id int64) (*models.WishlistItem, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	item, err := s.repo.FindForUser(ctx, viewer.ID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (s *wishlistService) detail(ctx context.Context, item *models.WishlistItem) (*dto.WishlistItemDetail, error) {
	stats, err := s.stats.stats(ctx, []int64{item.AquariumID})
	if err != nil {
		return nil, err
	}
	d := dto.NewWishlistItemDetail(*item, stats[item.AquariumID])
	return &d, nil
}

func (s *wishlistService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.WishlistItemDetail, error) {
	item, err := s.find(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, item)
}

// apply copies sent fields onto item and validates it.
func (s *wishlistService) apply(ctx context.Context, item *models.WishlistItem, in dto.WishlistItemInput) error {
	var errs validation
	if msg := dto.FieldErrors(in)["Priority"]; msg != "" {
		errs.add(msg)
	}

	moved := false
	if in.AquariumID != nil && *in.AquariumID != item.AquariumID {
		item.AquariumID = *in.AquariumID
		item.Aquarium = nil
		moved = true
	}
	if in.Priority != nil {
		item.Priority = in.Priority
	}
	if in.Memo != nil {
		item.Memo = *in.Memo
	}

	if item.AquariumID == 0 {
		errs.add("Aquarium must exist")
		return errs.err()
	}
	if item.Aquarium == nil {
		a, err := s.aquariums.GetByID(ctx, item.AquariumID)
		switch {
		case err == nil:
			item.Aquarium = a
		case errors.Is(err, gorm.ErrRecordNotFound):
			errs.add("Aquarium must exist")
			return errs.err()
		default:
			return err
		}
	}

	if item.ID == 0 || moved {
		exists, err := s.repo.Exists(ctx, item.UserID, item.AquariumID)
		if err != nil {
			return err
		}
		if exists {
			errs.add(duplicateWishlistMessage)
		}
	}
	return errs.err()
}

func (s *wishlistService) Create(ctx context.Context, viewer *models.User, in dto.WishlistItemInput) (*dto.WishlistItemDetail, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	item := &models.WishlistItem{UserID: viewer.ID}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		// lost a race with a concurrent insert
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Messages: []string{duplicateWishlistMessage}}
		}
		return nil, err
	}
	return s.detail(ctx, item)
}

func (s *wishlistService) Update(ctx context.Context, viewer *models.User, id int64, in dto.WishlistItemInput) (*dto.WishlistItemDetail, error) {
	item, err := s.find(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, item, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Messages: []string{duplicateWishlistMessage}}
		}
		return nil, err
	}
	return s.detail(ctx, item)
}

func (s *wishlistService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	if viewer == nil {
		return ErrUnauthenticated
	}
	return notFound(s.repo.Delete(ctx, viewer.ID, id))
}
