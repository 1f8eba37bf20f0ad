package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/maho-na510/aquarium-visit-log/internal/api/middleware"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"
	"github.com/maho-na510/aquarium-visit-log/internal/config"
	"github.com/maho-na510/aquarium-visit-log/internal/storage"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Auth      service.AuthService
	Aquariums service.AquariumService
	Visits    service.VisitService
	Wishlist  service.WishlistService
	Users     service.UserService
	Rankings  service.RankingService
}

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

// NewRouter builds the gin engine serving /api/v1 and the uploaded files.
func NewRouter(cfg *config.Config, svc Services, ping Pinger, logger *slog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.UploadMaxSize
	r.Use(gin.Recovery())
	r.Use(middleware.MaxBodySize(cfg.UploadMaxSize))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/up", func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.StoragePath != "" {
		r.Static(storage.URLPrefix, cfg.StoragePath)
	}

	api := r.Group("/api/v1", middleware.OptionalAuth(svc.Auth, cfg.SessionCookieName))

	NewAuthHandler(svc.Auth, SessionCookie{
		Name:   cfg.SessionCookieName,
		TTL:    cfg.SessionTTL,
		Secure: cfg.SecureCookie,
	}).RegisterRoutes(api)
	NewAquariumHandler(svc.Aquariums).RegisterRoutes(api.Group("/aquariums"))
	NewRankingHandler(svc.Rankings).RegisterRoutes(api.Group("/rankings"))
	NewUserHandler(svc.Users).RegisterRoutes(api.Group("/users"))

	signedIn := api.Group("", middleware.RequireAuth())
	NewVisitHandler(svc.Visits).RegisterRoutes(signedIn.Group("/visits"))
	NewWishlistHandler(svc.Wishlist).RegisterRoutes(signedIn.Group("/wishlist_items"))

	return r
}
