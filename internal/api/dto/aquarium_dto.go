package dto

import (
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"

	"gorm.io/datatypes"
)

// index rows carry only the first few photos
const indexPhotoLimit = 3

// AquariumRequest is the body of POST/PATCH /aquariums.
type AquariumRequest struct {
	Aquarium AquariumInput `json:"aquarium"`
}

// AquariumInput holds writable fields; nil means "not sent".
type AquariumInput struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	Address      *string        `json:"address"`
	Prefecture   *string        `json:"prefecture"`
	Latitude     *float64       `json:"latitude" binding:"omitempty,latitude"`
	Longitude    *float64       `json:"longitude" binding:"omitempty,longitude"`
	PhoneNumber  *string        `json:"phone_number"`
	Website      *string        `json:"website"`
	OpeningHours map[string]any `json:"opening_hours"`
	AdmissionFee map[string]any `json:"admission_fee"`
}

// ApplyTo copies every sent field onto a.
func (in AquariumInput) ApplyTo(a *models.Aquarium) {
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Address != nil {
		a.Address = *in.Address
	}
	if in.Prefecture != nil {
		a.Prefecture = *in.Prefecture
	}
	if in.Latitude != nil {
		a.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		a.Longitude = *in.Longitude
	}
	if in.PhoneNumber != nil {
		a.PhoneNumber = *in.PhoneNumber
	}
	if in.Website != nil {
		a.Website = *in.Website
	}
	if in.OpeningHours != nil {
		a.OpeningHours = datatypes.JSONMap(in.OpeningHours)
	}
	if in.AdmissionFee != nil {
		a.AdmissionFee = datatypes.JSONMap(in.AdmissionFee)
	}
}

// SetHeaderPhotoRequest is the body of PUT /aquariums/:id/set_header_photo.
type SetHeaderPhotoRequest struct {
	PhotoID *int64 `json:"photo_id" form:"photo_id"`
}

// AquariumStats are the visit aggregates shown on an aquarium.
type AquariumStats struct {
	VisitCount    int64
	AverageRating float64
}

// AquariumContext is everything a projection needs beyond the row itself,
// computed once per request for the whole page.
type AquariumContext struct {
	Viewer      *models.User
	VisitedIDs  map[int64]bool
	WishlistIDs map[int64]bool
	Stats       map[int64]AquariumStats
	Photos      map[int64][]Photo
	LatestPhoto map[int64]string
	Distances   map[int64]float64
}

func (c *AquariumContext) visited(id int64) bool {
	return c != nil && c.Viewer != nil && c.VisitedIDs[id]
}

func (c *AquariumContext) inWishlist(id int64) bool {
	return c != nil && c.Viewer != nil && c.WishlistIDs[id]
}

func (c *AquariumContext) stats(id int64) AquariumStats {
	if c == nil {
		return AquariumStats{}
	}
	return c.Stats[id]
}

func (c *AquariumContext) photos(id int64, limit int) []Photo {
	var all []Photo
	if c != nil {
		all = c.Photos[id]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]Photo, len(all))
	copy(out, all)
	return out
}

func (c *AquariumContext) latestPhoto(id int64) *string {
	if c == nil {
		return nil
	}
	return stringPtr(c.LatestPhoto[id])
}

func (c *AquariumContext) distance(id int64) *float64 {
	if c == nil {
		return nil
	}
	d, ok := c.Distances[id]
	if !ok {
		return nil
	}
	d = RoundRating(d)
	return &d
}

func photoURLs(photos []Photo) []string {
	urls := make([]string, len(photos))
	for i, p := range photos {
		urls[i] = p.URL
	}
	return urls
}

// AquariumIndex is the compact list shape.
type AquariumIndex struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Prefecture     string   `json:"prefecture"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AverageRating  float64  `json:"average_rating"`
	VisitCount     int64    `json:"visit_count"`
	Visited        bool     `json:"visited"`
	InWishlist     bool     `json:"in_wishlist"`
	PhotoURLs      []string `json:"photo_urls"`
	Photos         []Photo  `json:"photos"`
	LatestPhotoURL *string  `json:"latest_photo_url"`
	Distance       *float64 `json:"distance,omitempty"`
}

func NewAquariumIndex(a models.Aquarium, c *AquariumContext) AquariumIndex {
	stats := c.stats(a.ID)
	photos := c.photos(a.ID, indexPhotoLimit)
	return AquariumIndex{
		ID:             a.ID,
		Name:           a.Name,
		Address:        a.Address,
		Prefecture:     a.Prefecture,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		AverageRating:  stats.AverageRating,
		VisitCount:     stats.VisitCount,
		Visited:        c.visited(a.ID),
		InWishlist:     c.inWishlist(a.ID),
		PhotoURLs:      photoURLs(photos),
		Photos:         photos,
		LatestPhotoURL: c.latestPhoto(a.ID),
		Distance:       c.distance(a.ID),
	}
}

func NewAquariumIndexList(list []models.Aquarium, c *AquariumContext) []AquariumIndex {
	out := make([]AquariumIndex, 0, len(list))
	for _, a := range list {
		out = append(out, NewAquariumIndex(a, c))
	}
	return out
}

// RecentVisit summarises a visit on the aquarium detail page.
type RecentVisit struct {
	ID         int64  `json:"id"`
	UserName   string `json:"user_name"`
	VisitedAt  Date   `json:"visited_at"`
	Rating     *int   `json:"rating"`
	PhotoCount int64  `json:"photo_count"`
}

func NewRecentVisit(v models.Visit, photoCount int64) RecentVisit {
	rv := RecentVisit{
		ID:         v.ID,
		VisitedAt:  Date(v.VisitedAt),
		Rating:     v.Rating,
		PhotoCount: photoCount,
	}
	if v.User != nil {
		rv.UserName = v.User.Name
	}
	return rv
}

// AquariumDetail is the full shape for a single aquarium.
type AquariumDetail struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Address        string         `json:"address"`
	Prefecture     string         `json:"prefecture"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	PhoneNumber    string         `json:"phone_number"`
	Website        string         `json:"website"`
	OpeningHours   map[string]any `json:"opening_hours"`
	AdmissionFee   map[string]any `json:"admission_fee"`
	AverageRating  float64        `json:"average_rating"`
	VisitCount     int64          `json:"visit_count"`
	Visited        bool           `json:"visited"`
	InWishlist     bool           `json:"in_wishlist"`
	CreatedBy      *int64         `json:"created_by"`
	HeaderPhotoID  *int64         `json:"header_photo_id"`
	HeaderPhotoURL *string        `json:"header_photo_url"`
	PhotoURLs      []string       `json:"photo_urls"`
	Photos         []Photo        `json:"photos"`
	RecentVisits   []RecentVisit  `json:"recent_visits"`
}

func NewAquariumDetail(a models.Aquarium, c *AquariumContext, recent []RecentVisit, headerPhotoURL *string) AquariumDetail {
	stats := c.stats(a.ID)
	photos := c.photos(a.ID, 0)
	if recent == nil {
		recent = []RecentVisit{}
	}
	return AquariumDetail{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Address:        a.Address,
		Prefecture:     a.Prefecture,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		PhoneNumber:    a.PhoneNumber,
		Website:        a.Website,
		OpeningHours:   jsonMap(a.OpeningHours),
		AdmissionFee:   jsonMap(a.AdmissionFee),
		AverageRating:  stats.AverageRating,
		VisitCount:     stats.VisitCount,
		Visited:        c.visited(a.ID),
		InWishlist:     c.inWishlist(a.ID),
		CreatedBy:      a.UserID,
		HeaderPhotoID:  a.HeaderPhotoID,
		HeaderPhotoURL: headerPhotoURL,
		PhotoURLs:      photoURLs(photos),
		Photos:         photos,
		RecentVisits:   recent,
	}
}

// AquariumSummary is the minimal nested shape used under visits, wishlist items and users.
type AquariumSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Prefecture string `json:"prefecture"`
}

func NewAquariumSummary(a *models.Aquarium) AquariumSummary {
	if a == nil {
		return AquariumSummary{}
	}
	return AquariumSummary{ID: a.ID, Name: a.Name, Address: a.Address, Prefecture: a.Prefecture}
}

func jsonMap(m datatypes.JSONMap) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return map[string]any(m)
}
