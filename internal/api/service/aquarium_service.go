package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/geo"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"

	"gorm.io/gorm"
)

// OGImageFetcher resolves the Open Graph image of a web page, nil when there is none.
type OGImageFetcher interface {
	Fetch(ctx context.Context, pageURL string) *string
}

// AquariumListParams are the query parameters of GET /aquariums.
type AquariumListParams struct {
	Prefecture string
	Visited    *bool
	Sort       string
	Lat        *float64
	Lng        *float64
	DistanceKm float64
	Page       int
	Per        int
}

// AquariumPage is a page of aquariums. Pagination is nil for a blank search.
type AquariumPage struct {
	Aquariums  []dto.AquariumIndex `json:"aquariums"`
	Pagination *dto.Pagination     `json:"pagination"`
}

type AquariumService interface {
	List(ctx context.Context, viewer *models.User, p AquariumListParams) (*AquariumPage, error)
	Search(ctx context.Context, viewer *models.User, q, exhibit string, page, per int) (*AquariumPage, error)
	Nearby(ctx context.Context, viewer *models.User, lat, lng *float64, distanceKm float64) ([]dto.AquariumIndex, error)
	Get(ctx context.Context, viewer *models.User, id int64) (*dto.AquariumDetail, error)
	OGImage(ctx context.Context, id int64) (*string, error)

	Create(ctx context.Context, viewer *models.User, in dto.AquariumInput) (*dto.AquariumDetail, error)
	Update(ctx context.Context, viewer *models.User, id int64, in dto.AquariumInput) (*dto.AquariumDetail, error)
	Delete(ctx context.Context, viewer *models.User, id int64) error
	UploadPhotos(ctx context.Context, viewer *models.User, id int64, photos []Upload) (*dto.AquariumDetail, error)
	DeletePhoto(ctx context.Context, viewer *models.User, id, photoID int64) (*dto.AquariumDetail, error)
	SetHeaderPhoto(ctx context.Context, viewer *models.User, id int64, photoID *int64) (*dto.AquariumDetail, error)
}

type aquariumService struct {
	repo     repository.AquariumRepository
	geo      geo.Index
	og       OGImageFetcher
	media    *media
	decorate *decorator
	logger   *slog.Logger
}

func NewAquariumService(
	repo repository.AquariumRepository,
	visits repository.VisitRepository,
	wishlist repository.WishlistRepository,
	attachments repository.AttachmentRepository,
	index geo.Index,
	og OGImageFetcher,
	store storage.Store,
	logger *slog.Logger,
) AquariumService {
	m := &media{attachments: attachments, store: store, logger: logger}
	return &aquariumService{
		repo:   repo,
		geo:    index,
		og:     og,
		media:  m,
		logger: logger,
		decorate: &decorator{
			aquariums: repo,
			visits:    visits,
			wishlist:  wishlist,
			media:     m,
		},
	}
}

func radiusOrDefault(km float64) float64 {
	if km <= 0 {
		return geo.DefaultRadiusKm
	}
	return km
}

func hitDistances(hits []geo.Hit) map[int64]float64 {
	out := make(map[int64]float64, len(hits))
	for _, h := range hits {
		out[h.ID] = h.DistanceKm
	}
	return out
}

func (s *aquariumService) List(ctx context.Context, viewer *models.User, p AquariumListParams) (*AquariumPage, error) {
	page, per := dto.NormalizePage(p.Page, p.Per)
	q := repository.AquariumQuery{
		Prefecture: strings.TrimSpace(p.Prefecture),
		Sort:       p.Sort,
		Page:       page,
		Per:        per,
	}
	if viewer != nil {
		q.ViewerID = &viewer.ID
		q.Visited = p.Visited
	}

	var distances map[int64]float64
	// distance without a location falls back to newest first
	if p.Sort == repository.SortDistance && p.Lat != nil && p.Lng != nil {
		hits, err := s.geo.Nearby(ctx, *p.Lat, *p.Lng, radiusOrDefault(p.DistanceKm))
		if err != nil {
			return nil, err
		}
		q.ByDistance = true
		q.Near = hits
		distances = hitDistances(hits)
	}

	list, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate.index(ctx, viewer, list, distances)
	if err != nil {
		return nil, err
	}
	return &AquariumPage{Aquariums: items, Pagination: dto.NewPagination(page, per, total)}, nil
}

func (s *aquariumService) Search(ctx context.Context, viewer *models.User, q, exhibit string, page, per int) (*AquariumPage, error) {
	if strings.TrimSpace(q) == "" {
		return &AquariumPage{Aquariums: []dto.AquariumIndex{}}, nil
	}
	page, per = dto.NormalizePage(page, per)

	list, total, err := s.repo.Search(ctx, q, strings.TrimSpace(exhibit), page, per)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate.index(ctx, viewer, list, nil)
	if err != nil {
		return nil, err
	}
	return &AquariumPage{Aquariums: items, Pagination: dto.NewPagination(page, per, total)}, nil
}

func (s *aquariumService) Nearby(ctx context.Context, viewer *models.User, lat, lng *float64, distanceKm float64) ([]dto.AquariumIndex, error) {
	if lat == nil || lng == nil {
		return nil, ErrLocationRequired
	}
	hits, err := s.geo.Nearby(ctx, *lat, *lng, radiusOrDefault(distanceKm))
	if err != nil {
		return nil, err
	}
	list, err := s.repo.FindByIDs(ctx, geo.IDs(hits))
	if err != nil {
		return nil, err
	}
	return s.decorate.index(ctx, viewer, list, hitDistances(hits))
}

func (s *aquariumService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.AquariumDetail, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.decorate.detail(ctx, viewer, a)
}

// OGImage never fails once the aquarium exists; fetch problems yield nil.
func (s *aquariumService) OGImage(ctx context.Context, id int64) (*string, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if strings.TrimSpace(a.Website) == "" {
		return nil, nil
	}
	return s.og.Fetch(ctx, a.Website), nil
}

func requireAdmin(viewer *models.User) error {
	if viewer == nil {
		return ErrUnauthenticated
	}
	if !viewer.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func validateAquarium(a *models.Aquarium, in dto.AquariumInput, creating bool) error {
	var v validation
	tagged := dto.FieldErrors(in)
	if strings.TrimSpace(a.Name) == "" {
		v.add("Name can't be blank")
	}
	if strings.TrimSpace(a.Address) == "" {
		v.add("Address can't be blank")
	}
	if creating && in.Latitude == nil {
		v.add("Latitude can't be blank")
	} else if msg := tagged["Latitude"]; msg != "" {
		v.add(msg)
	}
	if creating && in.Longitude == nil {
		v.add("Longitude can't be blank")
	} else if msg := tagged["Longitude"]; msg != "" {
		v.add(msg)
	}
	return v.err()
}

// syncIndex keeps the proximity index in step with the table; the table stays
// authoritative so failures are only logged.
func (s *aquariumService) syncIndex(ctx context.Context, a *models.Aquarium) {
	if err := s.geo.Upsert(ctx, a.ID, a.Latitude, a.Longitude); err != nil {
		s.logger.Warn("failed to index aquarium location", "aquarium_id", a.ID, "error", err)
	}
}

func (s *aquariumService) Create(ctx context.Context, viewer *models.User, in dto.AquariumInput) (*dto.AquariumDetail, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	a := &models.Aquarium{UserID: &viewer.ID}
	in.ApplyTo(a)
	if err := validateAquarium(a, in, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, a)
	s.logger.Info("aquarium created", "aquarium_id", a.ID, "user_id", viewer.ID)
	return s.decorate.detail(ctx, viewer, a)
}

func (s *aquariumService) Update(ctx context.Context, viewer *models.User, id int64, in dto.AquariumInput) (*dto.AquariumDetail, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	in.ApplyTo(a)
	if err := validateAquarium(a, in, false); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if in.Latitude != nil || in.Longitude != nil {
		s.syncIndex(ctx, a)
	}
	return s.decorate.detail(ctx, viewer, a)
}

func (s *aquariumService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	if err := requireAdmin(viewer); err != nil {
		return err
	}
	keys, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err)
	}
	s.media.purge(ctx, keys...)
	if err := s.geo.Remove(ctx, id); err != nil {
		s.logger.Warn("failed to unindex aquarium", "aquarium_id", id, "error", err)
	}
	s.logger.Info("aquarium deleted", "aquarium_id", id, "blobs", len(keys))
	return nil
}

func (s *aquariumService) UploadPhotos(ctx context.Context, viewer *models.User, id int64, photos []Upload) (*dto.AquariumDetail, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if len(photos) == 0 {
		return nil, ErrPhotosRequired
	}
	if _, _, err := s.media.attach(ctx, models.RecordAquarium, a.ID, models.SlotPhotos, photos, 0); err != nil {
		return nil, err
	}
	return s.decorate.detail(ctx, viewer, a)
}

func (s *aquariumService) DeletePhoto(ctx context.Context, viewer *models.User, id, photoID int64) (*dto.AquariumDetail, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	att, err := s.media.attachments.Find(ctx, models.RecordAquarium, a.ID, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	if err := s.media.attachments.Delete(ctx, att.ID); err != nil {
		return nil, err
	}
	s.media.purge(ctx, att.Key)
	return s.decorate.detail(ctx, viewer, a)
}

func (s *aquariumService) SetHeaderPhoto(ctx context.Context, viewer *models.User, id int64, photoID *int64) (*dto.AquariumDetail, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if photoID == nil {
		return nil, ErrPhotoIDRequired
	}
	if _, err := s.media.attachments.FindPhotoForAquarium(ctx, a.ID, *photoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHeaderPhotoNotFound
		}
		return nil, err
	}
	a.HeaderPhotoID = photoID
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.decorate.detail(ctx, viewer, a)
}
