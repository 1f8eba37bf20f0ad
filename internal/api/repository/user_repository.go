package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// Create returns ErrDuplicate when the email or username is taken.
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Update saves the profile columns and replaces the favorite aquariums.
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("FavoriteAquariums").Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on a miss so callers never see a zero-value user
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("FavoriteAquariums", func(db *gorm.DB) *gorm.DB { return db.Order("aquariums.id ASC") }).
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).
			Select("name", "username").
			Updates(map[string]interface{}{"name": user.Name, "username": user.Username}).Error; err != nil {
			return err
		}
		return tx.Model(user).Association("FavoriteAquariums").Replace(user.FavoriteAquariums)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error; err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
