package handler

import (
	"errors"
	"net/http"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/middleware"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.GET("/:id/visits", h.Visits)
	rg.GET("/:id/wishlist", h.Wishlist)

	auth := rg.Group("", middleware.RequireAuth())
	auth.PATCH("/:id", h.Update)
	auth.PUT("/:id", h.Update)
	auth.POST("/:id/upload_avatar", h.UploadAvatar)
}

// Get a public profile
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	profile, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Update the signed-in user's own profile
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.UserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	profile, err := h.svc.Update(ctx, middleware.Viewer(c), id, req.User)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Visits(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page, err := h.svc.Visits(ctx, id, queryInt(c, "page"), queryInt(c, "per"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Wishlist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page, err := h.svc.Wishlist(ctx, id, queryInt(c, "page"), queryInt(c, "per"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var avatar *service.Upload
	fh, err := c.FormFile("avatar")
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		upload := newUpload(fh)
		avatar = &upload
	case errors.As(err, &tooLarge):
		respondBodyError(c, err)
		return
	}

	ctx, cancel := requestContext(c, uploadTimeout)
	defer cancel()

	url, err := h.svc.UploadAvatar(ctx, middleware.Viewer(c), id, avatar)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
