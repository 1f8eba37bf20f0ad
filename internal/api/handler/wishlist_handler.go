package handler

import (
	"net/http"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/middleware"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

type WishlistHandler struct {
	svc service.WishlistService
}

func NewWishlistHandler(svc service.WishlistService) *WishlistHandler {
	return &WishlistHandler{svc: svc}
}

// RegisterRoutes expects rg to already require a session.
func (h *WishlistHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// List the current user's wishlist, highest priority first
func (h *WishlistHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	page, err := h.svc.List(ctx, middleware.Viewer(c), queryInt(c, "page"), queryInt(c, "per"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *WishlistHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	item, err := h.svc.Get(ctx, middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *WishlistHandler) Create(c *gin.Context) {
	var req dto.WishlistItemRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	item, err := h.svc.Create(ctx, middleware.Viewer(c), req.WishlistItem)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *WishlistHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.WishlistItemRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	item, err := h.svc.Update(ctx, middleware.Viewer(c), id, req.WishlistItem)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *WishlistHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.Viewer(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
