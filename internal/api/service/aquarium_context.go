package service

import (
	"context"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/models"
	"github.com/maho-na510/aquarium-visit-log/internal/api/repository"
)

// decorator batch-loads everything the aquarium projections show, so a page
// costs a fixed number of queries whatever its size.
type decorator struct {
	aquariums repository.AquariumRepository
	visits    repository.VisitRepository
	wishlist  repository.WishlistRepository
	media     *media
}

func (d *decorator) context(ctx context.Context, viewer *models.User, list []models.Aquarium) (*dto.AquariumContext, error) {
	ids := make([]int64, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}

	c := &dto.AquariumContext{Viewer: viewer}

	stats, err := d.stats(ctx, ids)
	if err != nil {
		return nil, err
	}
	c.Stats = stats

	if viewer != nil {
		if c.VisitedIDs, err = d.visits.VisitedAquariumIDs(ctx, viewer.ID, ids); err != nil {
			return nil, err
		}
		if c.WishlistIDs, err = d.wishlist.WishlistAquariumIDs(ctx, viewer.ID, ids); err != nil {
			return nil, err
		}
	}

	if c.Photos, err = d.media.photos(ctx, models.RecordAquarium, ids, models.SlotPhotos); err != nil {
		return nil, err
	}

	keys, err := d.media.attachments.LatestVisitPhotoKeys(ctx, ids)
	if err != nil {
		return nil, err
	}
	c.LatestPhoto = make(map[int64]string, len(keys))
	for id, key := range keys {
		c.LatestPhoto[id] = d.media.store.URL(key)
	}
	return c, nil
}

func (d *decorator) stats(ctx context.Context, ids []int64) (map[int64]dto.AquariumStats, error) {
	raw, err := d.aquariums.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]dto.AquariumStats, len(raw))
	for id, s := range raw {
		out[id] = dto.AquariumStats{VisitCount: s.VisitCount, AverageRating: dto.AverageOrZero(s.AverageRating)}
	}
	return out, nil
}

func (d *decorator) index(ctx context.Context, viewer *models.User, list []models.Aquarium, distances map[int64]float64) ([]dto.AquariumIndex, error) {
	c, err := d.context(ctx, viewer, list)
	if err != nil {
		return nil, err
	}
	c.Distances = distances
	return dto.NewAquariumIndexList(list, c), nil
}

const recentVisitLimit = 5

func (d *decorator) detail(ctx context.Context, viewer *models.User, a *models.Aquarium) (*dto.AquariumDetail, error) {
	c, err := d.context(ctx, viewer, []models.Aquarium{*a})
	if err != nil {
		return nil, err
	}

	visits, err := d.aquariums.RecentVisits(ctx, a.ID, recentVisitLimit)
	if err != nil {
		return nil, err
	}
	visitIDs := make([]int64, len(visits))
	for i, v := range visits {
		visitIDs[i] = v.ID
	}
	counts, err := d.media.attachments.CountsFor(ctx, models.RecordVisit, visitIDs, models.SlotPhotos)
	if err != nil {
		return nil, err
	}
	recent := make([]dto.RecentVisit, 0, len(visits))
	for _, v := range visits {
		recent = append(recent, dto.NewRecentVisit(v, counts[v.ID]))
	}

	var headerURL *string
	if a.HeaderPhotoID != nil {
		// a purged header photo just renders without a header
		if att, err := d.media.attachments.FindByID(ctx, *a.HeaderPhotoID); err == nil {
			url := d.media.store.URL(att.Key)
			headerURL = &url
		}
	}

	detail := dto.NewAquariumDetail(*a, c, recent, headerURL)
	return &detail, nil
}
