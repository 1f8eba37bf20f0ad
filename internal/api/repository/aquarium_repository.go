package repository

import (
	"context"
	"fmt"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/geo"

	"gorm.io/gorm"
)

// Sort keys understood by AquariumRepository.List.
const (
	SortRating     = "rating"
	SortVisits     = "visits"
	SortPrefecture = "prefecture"
	SortDistance   = "distance"
)

// AquariumQuery describes one listing request. Filters are applied in
// order: prefecture, visited status, sort, then pagination.
type AquariumQuery struct {
	Prefecture string

	// Visited only applies when ViewerID is set.
	ViewerID *int64
	Visited  *bool

	Sort string

	// Near restricts the result to these aquariums when ByDistance is set
	// and orders them as given.
	ByDistance bool
	Near       []geo.Hit

	Page int
	Per  int
}

// VisitStats are the visit aggregates of one aquarium.
type VisitStats struct {
	AquariumID    int64
	VisitCount    int64
	AverageRating *float64
}

type AquariumRepository interface {
	List(ctx context.Context, q AquariumQuery) ([]models.Aquarium, int64, error)
	Search(ctx context.Context, term, exhibit string, page, per int) ([]models.Aquarium, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Aquarium, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Aquarium, error)
	Create(ctx context.Context, a *models.Aquarium) error
	Update(ctx context.Context, a *models.Aquarium) error
	// Delete removes the aquarium with its visits, wishlist items and
	// attachments, returning the blob keys that are no longer referenced.
	Delete(ctx context.Context, id int64) ([]string, error)
	Stats(ctx context.Context, ids []int64) (map[int64]VisitStats, error)
	RecentVisits(ctx context.Context, aquariumID int64, limit int) ([]models.Visit, error)
	// Websites lists the distinct non-empty website URLs.
	Websites(ctx context.Context) ([]string, error)
}

type aquariumRepository struct {
	db *gorm.DB
}

func NewAquariumRepository(db *gorm.DB) AquariumRepository {
	return &aquariumRepository{db: db}
}

func (r *aquariumRepository) List(ctx context.Context, q AquariumQuery) ([]models.Aquarium, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Aquarium{})

	if q.Prefecture != "" {
		base = base.Where("aquariums.prefecture = ?", q.Prefecture)
	}

	if q.ViewerID != nil && q.Visited != nil {
		visited := r.db.Model(&models.Visit{}).Select("aquarium_id").Where("user_id = ?", *q.ViewerID)
		if *q.Visited {
			base = base.Where("aquariums.id IN (?)", visited)
		} else {
			base = base.Where("aquariums.id NOT IN (?)", visited)
		}
	}

	var nearIDs []int64
	if q.ByDistance {
		nearIDs = geo.IDs(q.Near)
		if len(nearIDs) == 0 {
			return []models.Aquarium{}, 0, nil
		}
		base = base.Where("aquariums.id IN ?", nearIDs)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count aquariums: %w", err)
	}

	tx := base.Session(&gorm.Session{})
	switch {
	case q.Sort == SortRating:
		tx = tx.Select("aquariums.*").
			Joins("LEFT JOIN visits ON visits.aquarium_id = aquariums.id").
			Group("aquariums.id").
			Order("AVG(visits.rating) DESC NULLS LAST").
			Order("aquariums.id ASC")
	case q.Sort == SortVisits:
		tx = tx.Select("aquariums.*").
			Joins("LEFT JOIN visits ON visits.aquarium_id = aquariums.id").
			Group("aquariums.id").
			Order("COUNT(visits.id) DESC").
			Order("aquariums.id ASC")
	case q.Sort == SortPrefecture:
		tx = tx.Order(prefectureOrder())
	case q.ByDistance:
		tx = tx.Order(idOrder(nearIDs))
	default:
		tx = tx.Order("aquariums.created_at DESC").Order("aquariums.id DESC")
	}

	page, per := q.Page, q.Per
	var list []models.Aquarium
	if err := tx.Offset((page - 1) * per).Limit(per).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list aquariums: %w", err)
	}
	return list, total, nil
}

// Search matches term against name or address. A non-blank exhibit also
// requires a visit listing that exhibit.
func (r *aquariumRepository) Search(ctx context.Context, term, exhibit string, page, per int) ([]models.Aquarium, int64, error) {
	nameSQL, nameArg := r.contains("aquariums.name", term)
	addressSQL, addressArg := r.contains("aquariums.address", term)
	base := r.db.WithContext(ctx).
		Model(&models.Aquarium{}).
		Where(nameSQL+" OR "+addressSQL, nameArg, addressArg)

	if exhibit != "" {
		exhibitSQL, exhibitArg := r.contains("CAST(visits.good_exhibits AS TEXT)", exhibit)
		base = base.Where(
			"EXISTS (SELECT 1 FROM visits WHERE visits.aquarium_id = aquariums.id AND "+exhibitSQL+")",
			exhibitArg,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count search: %w", err)
	}

	var list []models.Aquarium
	if err := base.Session(&gorm.Session{}).
		Order("aquariums.id ASC").
		Offset((page - 1) * per).
		Limit(per).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("search aquariums: %w", err)
	}
	return list, total, nil
}

// contains is a case-sensitive substring match on column. sqlite's LIKE folds
// ASCII case, so it uses instr there.
func (r *aquariumRepository) contains(column, term string) (string, any) {
	if r.db.Dialector.Name() == "sqlite" {
		return "instr(" + column + ", ?) > 0", term
	}
	return column + " LIKE ?", "%" + term + "%"
}

func (r *aquariumRepository) GetByID(ctx context.Context, id int64) (*models.Aquarium, error) {
	var a models.Aquarium
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByIDs returns the aquariums in the order of ids, skipping unknown ids.
func (r *aquariumRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Aquarium, error) {
	if len(ids) == 0 {
		return []models.Aquarium{}, nil
	}
	var rows []models.Aquarium
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find aquariums: %w", err)
	}
	byID := make(map[int64]models.Aquarium, len(rows))
	for _, a := range rows {
		byID[a.ID] = a
	}
	out := make([]models.Aquarium, 0, len(rows))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *aquariumRepository) Create(ctx context.Context, a *models.Aquarium) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create aquarium: %w", err)
	}
	return nil
}

func (r *aquariumRepository) Update(ctx context.Context, a *models.Aquarium) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("update aquarium: %w", err)
	}
	return nil
}

func (r *aquariumRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Aquarium
		if err := tx.Select("id").First(&a, id).Error; err != nil {
			return err
		}

		var visitIDs []int64
		if err := tx.Model(&models.Visit{}).Where("aquarium_id = ?", id).Pluck("id", &visitIDs).Error; err != nil {
			return err
		}

		owned := tx.Model(&models.Attachment{}).Where("record_type = ? AND record_id = ?", models.RecordAquarium, id)
		if len(visitIDs) > 0 {
			owned = owned.Or("record_type = ? AND record_id IN ?", models.RecordVisit, visitIDs)
		}
		var attachments []models.Attachment
		if err := owned.Find(&attachments).Error; err != nil {
			return err
		}
		if len(attachments) > 0 {
			ids := make([]int64, len(attachments))
			for i, att := range attachments {
				ids[i] = att.ID
				keys = append(keys, att.Key)
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("aquarium_id = ?", id).Delete(&models.Visit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("aquarium_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_favorite_aquariums WHERE aquarium_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Aquarium{}, id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete aquarium: %w", err)
	}
	return keys, nil
}

func (r *aquariumRepository) Stats(ctx context.Context, ids []int64) (map[int64]VisitStats, error) {
	stats := make(map[int64]VisitStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}
	var rows []VisitStats
	if err := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Select("aquarium_id, COUNT(*) AS visit_count, CAST(AVG(rating) AS FLOAT) AS average_rating").
		Where("aquarium_id IN ?", ids).
		Group("aquarium_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aquarium stats: %w", err)
	}
	for _, row := range rows {
		stats[row.AquariumID] = row
	}
	return stats, nil
}

func (r *aquariumRepository) RecentVisits(ctx context.Context, aquariumID int64, limit int) ([]models.Visit, error) {
	var visits []models.Visit
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("aquarium_id = ?", aquariumID).
		Order("visited_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	return visits, nil
}

func (r *aquariumRepository) Websites(ctx context.Context) ([]string, error) {
	var urls []string
	if err := r.db.WithContext(ctx).
		Model(&models.Aquarium{}).
		Where("website <> ''").
		Distinct("website").
		Order("website ASC").
		Pluck("website", &urls).Error; err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	return urls, nil
}
