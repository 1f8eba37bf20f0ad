package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"

	"gorm.io/gorm"
)

// VisitListParams are the query parameters of GET /visits.
type VisitListParams struct {
	AquariumID *int64
	Year       *int
	Month      *int
	Query      string
	Sort       string
	Page       int
	Per        int
}

type VisitPage struct {
	Visits     []dto.VisitListItem `json:"visits"`
	Pagination *dto.Pagination     `json:"pagination"`
}

// VisitMediaUploads are the files sent with a visit write.
type VisitMediaUploads struct {
	Photos []Upload
	Videos []Upload
}

type VisitService interface {
	List(ctx context.Context, viewer *models.User, p VisitListParams) (*VisitPage, error)
	Get(ctx context.Context, viewer *models.User, id int64) (*dto.VisitDetail, error)
	Create(ctx context.Context, viewer *models.User, in dto.VisitInput, files VisitMediaUploads) (*dto.VisitDetail, error)
	Update(ctx context.Context, viewer *models.User, id int64, in dto.VisitInput, files VisitMediaUploads) (*dto.VisitDetail, error)
	Delete(ctx context.Context, viewer *models.User, id int64) error
	UploadMedia(ctx context.Context, viewer *models.User, id int64, files VisitMediaUploads) (*dto.VisitDetail, error)
}

type visitService struct {
	repo      repository.VisitRepository
	aquariums repository.AquariumRepository
	media     *media
	logger    *slog.Logger
}

func NewVisitService(
	repo repository.VisitRepository,
	aquariums repository.AquariumRepository,
	attachments repository.AttachmentRepository,
	store storage.Store,
	logger *slog.Logger,
) VisitService {
	return &visitService{
		repo:      repo,
		aquariums: aquariums,
		media:     &media{attachments: attachments, store: store, logger: logger},
		logger:    logger,
	}
}

func (s *visitService) List(ctx context.Context, viewer *models.User, p VisitListParams) (*VisitPage, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	page, per := dto.NormalizePage(p.Page, p.Per)
	f := repository.VisitFilter{
		UserID:     viewer.ID,
		AquariumID: p.AquariumID,
		Year:       p.Year,
		Query:      strings.TrimSpace(p.Query),
		Sort:       p.Sort,
		Page:       page,
		Per:        per,
	}
	// month only narrows a year
	if p.Year != nil {
		f.Month = p.Month
	}

	visits, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(visits))
	for i, v := range visits {
		ids[i] = v.ID
	}
	photos, err := s.media.photos(ctx, models.RecordVisit, ids, models.SlotPhotos)
	if err != nil {
		return nil, err
	}
	videos, err := s.media.photos(ctx, models.RecordVisit, ids, models.SlotVideos)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VisitListItem, 0, len(visits))
	for _, v := range visits {
		items = append(items, dto.NewVisitListItem(v, dto.VisitMedia{Photos: photos[v.ID], Videos: videos[v.ID]}))
	}
	return &VisitPage{Visits: items, Pagination: dto.NewPagination(page, per, total)}, nil
}

// owned loads a visit and checks that viewer wrote it.
func (s *visitService) owned(ctx context.Context, viewer *models.User, id int64) (*models.Visit, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if v.UserID != viewer.ID {
		return nil, ErrForbidden
	}
	return v, nil
}

func (s *visitService) detail(ctx context.Context, v *models.Visit) (*dto.VisitDetail, error) {
	ids := []int64{v.ID}
	photos, err := s.media.photos(ctx, models.RecordVisit, ids, models.SlotPhotos)
	if err != nil {
		return nil, err
	}
	videos, err := s.media.photos(ctx, models.RecordVisit, ids, models.SlotVideos)
	if err != nil {
		return nil, err
	}
	avatar, err := s.media.avatarURL(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	d := dto.NewVisitDetail(*v, dto.VisitMedia{Photos: photos[v.ID], Videos: videos[v.ID]}, avatar)
	return &d, nil
}

func (s *visitService) Get(ctx context.Context, viewer *models.User, id int64) (*dto.VisitDetail, error) {
	v, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, v)
}

// applyVisitInput copies sent fields onto v and validates the result.
func (s *visitService) applyVisitInput(ctx context.Context, v *models.Visit, in dto.VisitInput) error {
	var errs validation
	tagged := dto.FieldErrors(in)

	if in.AquariumID != nil {
		v.AquariumID = *in.AquariumID
	}
	if in.VisitedAt != nil {
		// an unparsable date counts as missing
		t, err := dto.ParseDate(*in.VisitedAt)
		if err != nil {
			t = time.Time{}
		}
		v.VisitedAt = t
	}
	if in.Weather != nil {
		v.Weather = *in.Weather
	}
	if in.Memo != nil {
		v.Memo = *in.Memo
	}
	if in.Rating != nil {
		v.Rating = in.Rating
	}
	if in.GoodExhibitsList != nil {
		v.GoodExhibits = cleanExhibits(in.GoodExhibitsList)
	}

	if v.VisitedAt.IsZero() {
		errs.add("Visited at can't be blank")
	}
	if msg := tagged["Rating"]; msg != "" {
		errs.add(msg)
	}
	if v.AquariumID == 0 {
		errs.add("Aquarium must exist")
	} else if v.Aquarium == nil || v.Aquarium.ID != v.AquariumID {
		a, err := s.aquariums.GetByID(ctx, v.AquariumID)
		switch {
		case err == nil:
			v.Aquarium = a
		case errors.Is(err, gorm.ErrRecordNotFound):
			errs.add("Aquarium must exist")
		default:
			return err
		}
	}
	return errs.err()
}

// cleanExhibits drops blank entries.
func cleanExhibits(list []string) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// attachAll stores photos and videos up to the per-visit caps. Either both
// batches are kept or neither is.
func (s *visitService) attachAll(ctx context.Context, v *models.Visit, files VisitMediaUploads) (skippedPhotos, skippedVideos int, err error) {
	photos, skippedPhotos, err := s.media.attach(ctx, models.RecordVisit, v.ID, models.SlotPhotos, files.Photos, models.MaxVisitPhotos)
	if err != nil {
		return 0, 0, err
	}
	_, skippedVideos, err = s.media.attach(ctx, models.RecordVisit, v.ID, models.SlotVideos, files.Videos, models.MaxVisitVideos)
	if err != nil {
		s.media.rollback(ctx, photos)
		return 0, 0, err
	}
	if skippedPhotos > 0 || skippedVideos > 0 {
		s.logger.Info("visit media over cap skipped", "visit_id", v.ID, "photos", skippedPhotos, "videos", skippedVideos)
	}
	return skippedPhotos, skippedVideos, nil
}

// withMedia attaches files, then reloads v for the response.
func (s *visitService) withMedia(ctx context.Context, v *models.Visit, files VisitMediaUploads) (*dto.VisitDetail, error) {
	skippedPhotos, skippedVideos, err := s.attachAll(ctx, v, files)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, v, skippedPhotos, skippedVideos)
}

func (s *visitService) reload(ctx context.Context, v *models.Visit, skippedPhotos, skippedVideos int) (*dto.VisitDetail, error) {
	fresh, err := s.repo.GetByID(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	d, err := s.detail(ctx, fresh)
	if err != nil {
		return nil, err
	}
	d.SkippedPhotos = skippedPhotos
	d.SkippedVideos = skippedVideos
	return d, nil
}

func (s *visitService) Create(ctx context.Context, viewer *models.User, in dto.VisitInput, files VisitMediaUploads) (*dto.VisitDetail, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	v := &models.Visit{UserID: viewer.ID}
	if err := s.applyVisitInput(ctx, v, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("visit created", "visit_id", v.ID, "user_id", viewer.ID, "aquarium_id", v.AquariumID)

	skippedPhotos, skippedVideos, err := s.attachAll(ctx, v, files)
	if err != nil {
		// a new visit whose uploads failed is not kept
		if keys, derr := s.repo.Delete(ctx, v.ID); derr != nil {
			s.logger.Warn("failed to remove visit after upload error", "visit_id", v.ID, "error", derr)
		} else {
			s.media.purge(ctx, keys...)
		}
		return nil, err
	}
	return s.reload(ctx, v, skippedPhotos, skippedVideos)
}

func (s *visitService) Update(ctx context.Context, viewer *models.User, id int64, in dto.VisitInput, files VisitMediaUploads) (*dto.VisitDetail, error) {
	v, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyVisitInput(ctx, v, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.withMedia(ctx, v, files)
}

func (s *visitService) Delete(ctx context.Context, viewer *models.User, id int64) error {
	if _, err := s.owned(ctx, viewer, id); err != nil {
		return err
	}
	keys, err := s.repo.Delete(ctx, id)
	if err != nil {
		return notFound(err)
	}
	s.media.purge(ctx, keys...)
	return nil
}

func (s *visitService) UploadMedia(ctx context.Context, viewer *models.User, id int64, files VisitMediaUploads) (*dto.VisitDetail, error) {
	v, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.withMedia(ctx, v, files)
}
