package repository

import (
	"context"
	"fmt"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"gorm.io/gorm"
)

type WishlistRepository interface {
	ListByUser(ctx context.Context, userID int64, page, per int) ([]models.WishlistItem, int64, error)
	// FindForUser only finds items owned by userID.
	FindForUser(ctx context.Context, userID, id int64) (*models.WishlistItem, error)
	Exists(ctx context.Context, userID, aquariumID int64) (bool, error)
	// Create returns ErrDuplicate when the user already listed the aquarium.
	Create(ctx context.Context, item *models.WishlistItem) error
	Update(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, userID, id int64) error
	WishlistAquariumIDs(ctx context.Context, userID int64, aquariumIDs []int64) (map[int64]bool, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID int64, page, per int) ([]models.WishlistItem, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.WishlistItem{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count wishlist: %w", err)
	}

	var items []models.WishlistItem
	if err := base.Session(&gorm.Session{}).
		Preload("Aquarium").
		Order("priority DESC NULLS LAST").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * per).
		Limit(per).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list wishlist: %w", err)
	}
	return items, total, nil
}

func (r *wishlistRepository) FindForUser(ctx context.Context, userID, id int64) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if err := r.db.WithContext(ctx).
		Preload("Aquarium").
		Where("user_id = ?", userID).
		First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) Exists(ctx context.Context, userID, aquariumID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND aquarium_id = ?", userID, aquariumID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *wishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	if err := r.db.WithContext(ctx).Omit("User", "Aquarium").Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Update(ctx context.Context, item *models.WishlistItem) error {
	if err := r.db.WithContext(ctx).Omit("User", "Aquarium").Save(item).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.WishlistItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("remove from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *wishlistRepository) WishlistAquariumIDs(ctx context.Context, userID int64, aquariumIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool)
	if len(aquariumIDs) == 0 {
		return set, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND aquarium_id IN ?", userID, aquariumIDs).
		Pluck("aquarium_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("wishlist aquariums: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *wishlistRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.WishlistItem{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count wishlist: %w", err)
	}
	return n, nil
}
