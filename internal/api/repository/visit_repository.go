package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"gorm.io/gorm"
)

// VisitFilter narrows a user's visit list.
type VisitFilter struct {
	UserID     int64
	AquariumID *int64
	Year       *int
	Month      *int
	// Query is a case-insensitive substring of the memo
	Query string
	// Sort is "rating" or anything else for newest first
	Sort string
	Page int
	Per  int
}

type VisitRepository interface {
	List(ctx context.Context, f VisitFilter) ([]models.Visit, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Visit, error)
	Create(ctx context.Context, v *models.Visit) error
	Update(ctx context.Context, v *models.Visit) error
	// Delete removes the visit and its attachments, returning their blob keys.
	Delete(ctx context.Context, id int64) ([]string, error)
	VisitedAquariumIDs(ctx context.Context, userID int64, aquariumIDs []int64) (map[int64]bool, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type visitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) List(ctx context.Context, f VisitFilter) ([]models.Visit, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Visit{}).Where("visits.user_id = ?", f.UserID)

	if f.AquariumID != nil {
		base = base.Where("visits.aquarium_id = ?", *f.AquariumID)
	}
	if f.Year != nil {
		from := time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if f.Month != nil && *f.Month >= 1 && *f.Month <= 12 {
			from = time.Date(*f.Year, time.Month(*f.Month), 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		}
		base = base.Where("visits.visited_at >= ? AND visits.visited_at < ?", from, to)
	}
	if f.Query != "" {
		base = base.Where("LOWER(visits.memo) LIKE LOWER(?)", "%"+f.Query+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	tx := base.Session(&gorm.Session{}).Preload("Aquarium")
	if f.Sort == SortRating {
		tx = tx.Order("visits.rating DESC NULLS LAST")
	}
	tx = tx.Order("visits.visited_at DESC").Order("visits.id DESC")

	var visits []models.Visit
	if err := tx.Offset((f.Page - 1) * f.Per).Limit(f.Per).Find(&visits).Error; err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}
	return visits, total, nil
}

func (r *visitRepository) GetByID(ctx context.Context, id int64) (*models.Visit, error) {
	var v models.Visit
	if err := r.db.WithContext(ctx).
		Preload("Aquarium").
		Preload("User").
		First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *visitRepository) Create(ctx context.Context, v *models.Visit) error {
	if err := r.db.WithContext(ctx).Omit("User", "Aquarium").Create(v).Error; err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Update(ctx context.Context, v *models.Visit) error {
	if err := r.db.WithContext(ctx).Omit("User", "Aquarium").Save(v).Error; err != nil {
		return fmt.Errorf("update visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attachments []models.Attachment
		if err := tx.Where("record_type = ? AND record_id = ?", models.RecordVisit, id).
			Find(&attachments).Error; err != nil {
			return err
		}
		for _, att := range attachments {
			keys = append(keys, att.Key)
		}
		if err := tx.Where("record_type = ? AND record_id = ?", models.RecordVisit, id).
			Delete(&models.Attachment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Visit{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete visit: %w", err)
	}
	return keys, nil
}

// VisitedAquariumIDs reports which of aquariumIDs the user has visited.
func (r *visitRepository) VisitedAquariumIDs(ctx context.Context, userID int64, aquariumIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool)
	if len(aquariumIDs) == 0 {
		return set, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Distinct("aquarium_id").
		Where("user_id = ? AND aquarium_id IN ?", userID, aquariumIDs).
		Pluck("aquarium_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("visited aquariums: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *visitRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Visit{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return n, nil
}
