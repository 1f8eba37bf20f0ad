package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/middleware"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	svc service.VisitService
}

func NewVisitHandler(svc service.VisitService) *VisitHandler {
	return &VisitHandler{svc: svc}
}

// RegisterRoutes expects rg to already require a session.
func (h *VisitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/upload_photos", h.UploadMedia)
}

// List the current user's visits
func (h *VisitHandler) List(c *gin.Context) {
	var aquariumID *int64
	if n := queryIntPtr(c, "aquarium_id"); n != nil {
		v := int64(*n)
		aquariumID = &v
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page, err := h.svc.List(ctx, middleware.Viewer(c), service.VisitListParams{
		AquariumID: aquariumID,
		Year:       queryIntPtr(c, "year"),
		Month:      queryIntPtr(c, "month"),
		Query:      c.Query("q"),
		Sort:       c.Query("sort"),
		Page:       queryInt(c, "page"),
		Per:        queryInt(c, "per"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *VisitHandler) Get(c *gin.Context) {
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

// Create a visit from JSON or from a multipart form with media
func (h *VisitHandler) Create(c *gin.Context) {
	in, files, ok := bindVisit(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, uploadTimeout)
	defer cancel()

	detail, err := h.svc.Create(ctx, middleware.Viewer(c), in, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

func (h *VisitHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, files, ok := bindVisit(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, uploadTimeout)
	defer cancel()

	detail, err := h.svc.Update(ctx, middleware.Viewer(c), id, in, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *VisitHandler) Delete(c *gin.Context) {
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

// UploadMedia attaches photos and videos; files over the caps are skipped.
func (h *VisitHandler) UploadMedia(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var files service.VisitMediaUploads
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			respondBodyError(c, err)
			return
		}
		files = visitMedia(form)
	}

	ctx, cancel := requestContext(c, uploadTimeout)
	defer cancel()

	detail, err := h.svc.UploadMedia(ctx, middleware.Viewer(c), id, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// bindVisit reads {"visit": {...}} or the visit[...] fields of a multipart
// form. It writes the error response itself when ok is false.
func bindVisit(c *gin.Context) (dto.VisitInput, service.VisitMediaUploads, bool) {
	if !isMultipart(c) {
		var req dto.VisitRequest
		if !bindJSON(c, &req) {
			return dto.VisitInput{}, service.VisitMediaUploads{}, false
		}
		return req.Visit, service.VisitMediaUploads{}, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBodyError(c, err)
		return dto.VisitInput{}, service.VisitMediaUploads{}, false
	}
	return visitFormInput(form), visitMedia(form), true
}

func visitMedia(form *multipart.Form) service.VisitMediaUploads {
	return service.VisitMediaUploads{
		Photos: formFiles(form, "photos"),
		Videos: formFiles(form, "videos"),
	}
}

// visitFormInput maps visit[field] form values onto a VisitInput. Malformed
// numbers are passed on so validation can reject them.
func visitFormInput(form *multipart.Form) dto.VisitInput {
	var in dto.VisitInput
	if v, ok := formValue(form, "visit[aquarium_id]"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			id = 0
		}
		in.AquariumID = &id
	}
	if v, ok := formValue(form, "visit[visited_at]"); ok {
		in.VisitedAt = &v
	}
	if v, ok := formValue(form, "visit[weather]"); ok {
		in.Weather = &v
	}
	if v, ok := formValue(form, "visit[memo]"); ok {
		in.Memo = &v
	}
	if v, ok := formValue(form, "visit[rating]"); ok && strings.TrimSpace(v) != "" {
		rating, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			rating = 0
		}
		in.Rating = &rating
	}
	if exhibits, ok := formValues(form, "visit[good_exhibits_list]"); ok {
		// a single blank entry clears the list
		in.GoodExhibitsList = append([]string{}, exhibits...)
	}
	return in
}
