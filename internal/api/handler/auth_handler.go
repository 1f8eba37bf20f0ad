package handler

import (
	"net/http"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/middleware"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	authService service.AuthService
	cookie      SessionCookie
}

func NewAuthHandler(authService service.AuthService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.DELETE("/logout", h.Logout)
	rg.GET("/me", h.Me)
}

// Register creates the account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	user, token, err := h.authService.Register(ctx, req.User)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSession(c, token, int(h.cookie.TTL.Seconds()))
	c.JSON(http.StatusCreated, dto.SessionResponse{User: dto.NewSessionUser(user), Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidCredentials)
		return
	}

	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSession(c, token, int(h.cookie.TTL.Seconds()))
	c.JSON(http.StatusOK, dto.SessionResponse{User: dto.NewSessionUser(user), Token: token})
}

// Logout clears the cookie. Tokens are stateless, so a bearer token stays
// valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSession(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user or {"user": null}
func (h *AuthHandler) Me(c *gin.Context) {
	viewer := middleware.Viewer(c)
	if viewer == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.NewSessionUser(viewer)})
}

func (h *AuthHandler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}
