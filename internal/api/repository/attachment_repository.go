package repository

import (
	"context"
	"fmt"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, att *models.Attachment) error
	// ListFor returns the attachments of one slot for many records, oldest first.
	ListFor(ctx context.Context, recordType string, recordIDs []int64, name string) ([]models.Attachment, error)
	Find(ctx context.Context, recordType string, recordID, id int64) (*models.Attachment, error)
	FindByID(ctx context.Context, id int64) (*models.Attachment, error)
	Delete(ctx context.Context, id int64) error
	CountsFor(ctx context.Context, recordType string, recordIDs []int64, name string) (map[int64]int64, error)
	// LatestVisitPhotoKeys maps each aquarium to the first photo of its most
	// recently visited visit that has one.
	LatestVisitPhotoKeys(ctx context.Context, aquariumIDs []int64) (map[int64]string, error)
	// FindPhotoForAquarium finds a photo of the aquarium itself or of one of its visits.
	FindPhotoForAquarium(ctx context.Context, aquariumID, photoID int64) (*models.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	if err := r.db.WithContext(ctx).Create(att).Error; err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

func (r *attachmentRepository) ListFor(ctx context.Context, recordType string, recordIDs []int64, name string) ([]models.Attachment, error) {
	if len(recordIDs) == 0 {
		return []models.Attachment{}, nil
	}
	var list []models.Attachment
	if err := r.db.WithContext(ctx).
		Where("record_type = ? AND record_id IN ? AND name = ?", recordType, recordIDs, name).
		Order("created_at ASC").
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return list, nil
}

func (r *attachmentRepository) Find(ctx context.Context, recordType string, recordID, id int64) (*models.Attachment, error) {
	var att models.Attachment
	if err := r.db.WithContext(ctx).
		Where("record_type = ? AND record_id = ?", recordType, recordID).
		First(&att, id).Error; err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) FindByID(ctx context.Context, id int64) (*models.Attachment, error) {
	var att models.Attachment
	if err := r.db.WithContext(ctx).First(&att, id).Error; err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Attachment{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete attachment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attachmentRepository) CountsFor(ctx context.Context, recordType string, recordIDs []int64, name string) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(recordIDs))
	if len(recordIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		RecordID int64
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Select("record_id, COUNT(*) AS total").
		Where("record_type = ? AND record_id IN ? AND name = ?", recordType, recordIDs, name).
		Group("record_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count attachments: %w", err)
	}
	for _, row := range rows {
		counts[row.RecordID] = row.Total
	}
	return counts, nil
}

func (r *attachmentRepository) LatestVisitPhotoKeys(ctx context.Context, aquariumIDs []int64) (map[int64]string, error) {
	keys := make(map[int64]string, len(aquariumIDs))
	if len(aquariumIDs) == 0 {
		return keys, nil
	}
	var rows []struct {
		AquariumID int64
		BlobKey    string
	}
	// rows come newest visit first, the first row per aquarium wins
	if err := r.db.WithContext(ctx).
		Table("attachments").
		Select("visits.aquarium_id, attachments.blob_key").
		Joins("JOIN visits ON attachments.record_type = ? AND attachments.record_id = visits.id", models.RecordVisit).
		Where("attachments.name = ? AND visits.aquarium_id IN ?", models.SlotPhotos, aquariumIDs).
		Order("visits.visited_at DESC").
		Order("visits.id DESC").
		Order("attachments.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("latest visit photos: %w", err)
	}
	for _, row := range rows {
		if _, ok := keys[row.AquariumID]; !ok {
			keys[row.AquariumID] = row.BlobKey
		}
	}
	return keys, nil
}

func (r *attachmentRepository) FindPhotoForAquarium(ctx context.Context, aquariumID, photoID int64) (*models.Attachment, error) {
	visits := r.db.Model(&models.Visit{}).Select("id").Where("aquarium_id = ?", aquariumID)
	var att models.Attachment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND name = ?", photoID, models.SlotPhotos).
		Where("(record_type = ? AND record_id = ?) OR (record_type = ? AND record_id IN (?))",
			models.RecordAquarium, aquariumID, models.RecordVisit, visits).
		First(&att).Error; err != nil {
		return nil, err
	}
	return &att, nil
}
