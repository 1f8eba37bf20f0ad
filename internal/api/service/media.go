package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"
)

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// media stores uploads as attachments and resolves their URLs.
type media struct {
	attachments repository.AttachmentRepository
	store       storage.Store
	logger      *slog.Logger
}

// attach stores uploads in order until the slot holds limit files
// (limit <= 0 means unlimited) and returns the new attachments and how many
// uploads were skipped. A failed batch is rolled back as a whole.
func (m *media) attach(ctx context.Context, recordType string, recordID int64, slot string, uploads []Upload, limit int) ([]models.Attachment, int, error) {
	if len(uploads) == 0 {
		return nil, 0, nil
	}
	have := 0
	if limit > 0 {
		counts, err := m.attachments.CountsFor(ctx, recordType, []int64{recordID}, slot)
		if err != nil {
			return nil, 0, err
		}
		have = int(counts[recordID])
	}

	var created []models.Attachment
	for i, up := range uploads {
		if limit > 0 && have >= limit {
			return created, len(uploads) - i, nil
		}
		att, err := m.storeOne(ctx, recordType, recordID, slot, up)
		if err != nil {
			m.rollback(ctx, created)
			return nil, 0, err
		}
		created = append(created, *att)
		have++
	}
	return created, 0, nil
}

// rollback removes attachments written by a batch that later failed.
func (m *media) rollback(ctx context.Context, created []models.Attachment) {
	for _, att := range created {
		if err := m.attachments.Delete(ctx, att.ID); err != nil {
			m.logger.Warn("failed to roll back attachment", "attachment_id", att.ID, "error", err)
			continue
		}
		m.purge(ctx, att.Key)
	}
}

func (m *media) storeOne(ctx context.Context, recordType string, recordID int64, slot string, up Upload) (*models.Attachment, error) {
	r, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", up.Filename, err)
	}
	defer r.Close()

	key := storage.NewKey(up.Filename)
	size, err := m.store.Put(ctx, key, r)
	if err != nil {
		return nil, fmt.Errorf("store upload %q: %w", up.Filename, err)
	}

	att := &models.Attachment{
		RecordType:  recordType,
		RecordID:    recordID,
		Name:        slot,
		Key:         key,
		Filename:    up.Filename,
		ContentType: up.ContentType,
		ByteSize:    size,
	}
	if err := m.attachments.Create(ctx, att); err != nil {
		m.purge(ctx, key)
		return nil, err
	}
	return att, nil
}

// replace swaps the single attachment of a slot (avatars).
func (m *media) replace(ctx context.Context, recordType string, recordID int64, slot string, up Upload) error {
	old, err := m.attachments.ListFor(ctx, recordType, []int64{recordID}, slot)
	if err != nil {
		return err
	}
	if _, err := m.storeOne(ctx, recordType, recordID, slot, up); err != nil {
		return err
	}
	for _, att := range old {
		if err := m.attachments.Delete(ctx, att.ID); err != nil {
			return err
		}
		m.purge(ctx, att.Key)
	}
	return nil
}

// purge removes blobs whose rows are gone; failures only leave orphaned files.
func (m *media) purge(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Warn("failed to purge blob", "key", key, "error", err)
		}
	}
}

// photos groups the attachments of one slot by record.
func (m *media) photos(ctx context.Context, recordType string, recordIDs []int64, slot string) (map[int64][]dto.Photo, error) {
	list, err := m.attachments.ListFor(ctx, recordType, recordIDs, slot)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]dto.Photo, len(recordIDs))
	for _, att := range list {
		out[att.RecordID] = append(out[att.RecordID], dto.Photo{ID: att.ID, URL: m.store.URL(att.Key)})
	}
	return out, nil
}

// avatarURL is "" when the user has no avatar.
func (m *media) avatarURL(ctx context.Context, userID int64) (string, error) {
	list, err := m.attachments.ListFor(ctx, models.RecordUser, []int64{userID}, models.SlotAvatar)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return m.store.URL(list[len(list)-1].Key), nil
}
