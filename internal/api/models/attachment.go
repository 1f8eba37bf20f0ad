package models

import "time"

// Owners of an attachment.
const (
	RecordAquarium = "Aquarium"
	RecordVisit    = "Visit"
	RecordUser     = "User"
)

// Attachment slots.
const (
	SlotPhotos = "photos"
	SlotVideos = "videos"
	SlotAvatar = "avatar"
)

// Attachment points a record slot at a stored blob.
type Attachment struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RecordType  string    `json:"record_type" gorm:"size:32;not null;index:idx_attachments_record"`
	RecordID    int64     `json:"record_id" gorm:"not null;index:idx_attachments_record"`
	Name        string    `json:"name" gorm:"size:32;not null;index:idx_attachments_record"`
	Key         string    `json:"key" gorm:"column:blob_key;uniqueIndex;not null"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	ByteSize    int64     `json:"byte_size"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Attachment) TableName() string {
	return "attachments"
}
