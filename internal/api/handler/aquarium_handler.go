package handler

import (
	"net/http"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/middleware"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"
	"github.com/maho-na510/aquarium-visit-log/internal/geo"

	"github.com/gin-gonic/gin"
)

type AquariumHandler struct {
	svc service.AquariumService
}

func NewAquariumHandler(svc service.AquariumService) *AquariumHandler {
	return &AquariumHandler{svc: svc}
}

func (h *AquariumHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/search", h.Search)
	rg.GET("/nearby", h.Nearby)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/og_image", h.OGImage)

	admin := rg.Group("", middleware.RequireAdmin())
	admin.POST("", h.Create)
	admin.PATCH("/:id", h.Update)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.POST("/:id/upload_photos", h.UploadPhotos)
	admin.DELETE("/:id/photos/:photo_id", h.DeletePhoto)
	admin.PUT("/:id/set_header_photo", h.SetHeaderPhoto)
}

// List aquariums, optionally filtered and sorted
func (h *AquariumHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page, err := h.svc.List(ctx, middleware.Viewer(c), service.AquariumListParams{
		Prefecture: c.Query("prefecture"),
		Visited:    queryBoolPtr(c, "visited"),
		Sort:       c.Query("sort"),
		Lat:        queryFloatPtr(c, "lat"),
		Lng:        queryFloatPtr(c, "lng"),
		DistanceKm: distanceKm(c),
		Page:       queryInt(c, "page"),
		Per:        queryInt(c, "per"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Search aquariums by name or address
func (h *AquariumHandler) Search(c *gin.Context) {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page, err := h.svc.Search(ctx, middleware.Viewer(c), c.Query("q"), c.Query("exhibit"), queryInt(c, "page"), queryInt(c, "per"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Nearby aquariums around lat/lng, nearest first
func (h *AquariumHandler) Nearby(c *gin.Context) {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	aquariums, err := h.svc.Nearby(ctx, middleware.Viewer(c), queryFloatPtr(c, "lat"), queryFloatPtr(c, "lng"), distanceKm(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"aquariums": aquariums})
}

func distanceKm(c *gin.Context) float64 {
	if d := queryFloatPtr(c, "distance"); d != nil && *d > 0 {
		return *d
	}
	return geo.DefaultRadiusKm
}

func (h *AquariumHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	detail, err := h.svc.Get(ctx, middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// OGImage answers 200 even when the site could not be read.
func (h *AquariumHandler) OGImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// the fetch has its own timeout
	image, err := h.svc.OGImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ogImageUrl": image})
}

func (h *AquariumHandler) Create(c *gin.Context) {
	var req dto.AquariumRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	detail, err := h.svc.Create(ctx, middleware.Viewer(c), req.Aquarium)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

func (h *AquariumHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.AquariumRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	detail, err := h.svc.Update(ctx, middleware.Viewer(c), id, req.Aquarium)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Delete the aquarium with its visits, wishlist items and photos
func (h *AquariumHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, uploadTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.Viewer(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AquariumHandler) UploadPhotos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var photos []service.Upload
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			respondBodyError(c, err)
			return
		}
		photos = formFiles(form, "photos")
	}

	ctx, cancel := requestContext(c, uploadTimeout)
	defer cancel()

	detail, err := h.svc.UploadPhotos(ctx, middleware.Viewer(c), id, photos)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *AquariumHandler) DeletePhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	photoID, ok := paramID(c, "photo_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	detail, err := h.svc.DeletePhoto(ctx, middleware.Viewer(c), id, photoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// SetHeaderPhoto accepts photo_id as JSON, form or query parameter.
func (h *AquariumHandler) SetHeaderPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.SetHeaderPhotoRequest
	if c.Request.ContentLength != 0 {
		// a malformed body is reported as a missing photo_id
		_ = c.ShouldBind(&req)
	}
	if req.PhotoID == nil {
		if n := queryIntPtr(c, "photo_id"); n != nil {
			photoID := int64(*n)
			req.PhotoID = &photoID
		}
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	detail, err := h.svc.SetHeaderPhoto(ctx, middleware.Viewer(c), id, req.PhotoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
