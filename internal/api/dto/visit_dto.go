package dto

import (
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
)

// list rows show a shortened memo
const memoPreviewLength = 100

// VisitRequest is the body of POST/PATCH /visits.
type VisitRequest struct {
	Visit VisitInput `json:"visit"`
}

type VisitInput struct {
	AquariumID       *int64   `json:"aquarium_id"`
	VisitedAt        *string  `json:"visited_at"`
	Weather          *string  `json:"weather"`
	Memo             *string  `json:"memo"`
	Rating           *int     `json:"rating" binding:"omitempty,oneof=1 2 3 4 5"`
	GoodExhibitsList []string `json:"good_exhibits_list"`
}

// VisitMedia are the attachments of one visit.
type VisitMedia struct {
	Photos []Photo
	Videos []Photo
}

// VisitListItem is one row of GET /visits.
type VisitListItem struct {
	ID         int64             `json:"id"`
	Aquarium   VisitAquariumLite `json:"aquarium"`
	VisitedAt  Date              `json:"visitedAt"`
	Weather    string            `json:"weather"`
	Rating     *int              `json:"rating"`
	Memo       string            `json:"memo"`
	PhotoURLs  []string          `json:"photoUrls"`
	PhotoCount int               `json:"photoCount"`
	VideoCount int               `json:"videoCount"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type VisitAquariumLite struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func NewVisitListItem(v models.Visit, media VisitMedia) VisitListItem {
	preview := media.Photos
	if len(preview) > indexPhotoLimit {
		preview = preview[:indexPhotoLimit]
	}
	item := VisitListItem{
		ID:         v.ID,
		VisitedAt:  Date(v.VisitedAt),
		Weather:    v.Weather,
		Rating:     v.Rating,
		Memo:       Truncate(v.Memo, memoPreviewLength),
		PhotoURLs:  photoURLs(preview),
		PhotoCount: len(media.Photos),
		VideoCount: len(media.Videos),
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	if v.Aquarium != nil {
		item.Aquarium = VisitAquariumLite{ID: v.Aquarium.ID, Name: v.Aquarium.Name, Address: v.Aquarium.Address}
	}
	return item
}

// VisitDetail is the full visit shape.
type VisitDetail struct {
	ID            int64              `json:"id"`
	Aquarium      VisitAquariumPlace `json:"aquarium"`
	User          VisitUser          `json:"user"`
	VisitedAt     Date               `json:"visitedAt"`
	Weather       string             `json:"weather"`
	Rating        *int               `json:"rating"`
	Memo          string             `json:"memo"`
	GoodExhibits  []string           `json:"goodExhibits"`
	PhotoURLs     []string           `json:"photoUrls"`
	VideoURLs     []string           `json:"videoUrls"`
	Photos        []Photo            `json:"photos"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	SkippedPhotos int                `json:"skipped_photos,omitempty"`
	SkippedVideos int                `json:"skipped_videos,omitempty"`
}

type VisitAquariumPlace struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type VisitUser struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatarUrl"`
}

func NewVisitDetail(v models.Visit, media VisitMedia, avatarURL string) VisitDetail {
	exhibits := []string(v.GoodExhibits)
	if exhibits == nil {
		exhibits = []string{}
	}
	photos := media.Photos
	if photos == nil {
		photos = []Photo{}
	}
	d := VisitDetail{
		ID:           v.ID,
		VisitedAt:    Date(v.VisitedAt),
		Weather:      v.Weather,
		Rating:       v.Rating,
		Memo:         v.Memo,
		GoodExhibits: exhibits,
		PhotoURLs:    photoURLs(media.Photos),
		VideoURLs:    photoURLs(media.Videos),
		Photos:       photos,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if a := v.Aquarium; a != nil {
		d.Aquarium = VisitAquariumPlace{ID: a.ID, Name: a.Name, Address: a.Address, Latitude: a.Latitude, Longitude: a.Longitude}
	}
	if u := v.User; u != nil {
		d.User = VisitUser{ID: u.ID, Name: u.Name, Username: u.Username, AvatarURL: stringPtr(avatarURL)}
	}
	return d
}

// UserVisitItem is one row of GET /users/:id/visits.
type UserVisitItem struct {
	ID         int64           `json:"id"`
	Aquarium   AquariumSummary `json:"aquarium"`
	VisitedAt  Date            `json:"visited_at"`
	Rating     *int            `json:"rating"`
	Weather    string          `json:"weather"`
	PhotoCount int             `json:"photo_count"`
}

func NewUserVisitItem(v models.Visit, photoCount int) UserVisitItem {
	return UserVisitItem{
		ID:         v.ID,
		Aquarium:   NewAquariumSummary(v.Aquarium),
		VisitedAt:  Date(v.VisitedAt),
		Rating:     v.Rating,
		Weather:    v.Weather,
		PhotoCount: photoCount,
	}
}
