package handler

import (
	"context"
	"net/http"

	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

type RankingHandler struct {
	svc service.RankingService
}

func NewRankingHandler(svc service.RankingService) *RankingHandler {
	return &RankingHandler{svc: svc}
}

func (h *RankingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/most_visited", h.MostVisited)
	rg.GET("/highest_rated", h.HighestRated)
	rg.GET("/trending", h.Trending)
	rg.GET("/wishlist_champions", h.WishlistChampions)
	rg.GET("/hidden_gems", h.HiddenGems)
}

func (h *RankingHandler) MostVisited(c *gin.Context) {
	serveRanking(c, h.svc.MostVisited)
}

func (h *RankingHandler) HighestRated(c *gin.Context) {
	serveRanking(c, h.svc.HighestRated)
}

func (h *RankingHandler) Trending(c *gin.Context) {
	serveRanking(c, h.svc.Trending)
}

func (h *RankingHandler) WishlistChampions(c *gin.Context) {
	serveRanking(c, h.svc.WishlistChampions)
}

func (h *RankingHandler) HiddenGems(c *gin.Context) {
	serveRanking(c, h.svc.HiddenGems)
}

func serveRanking[T any](c *gin.Context, fn func(context.Context, service.RankingParams) (*service.RankingResult[T], error)) {
	ctx, cancel := requestContext(c, requestTimeout)
	defer cancel()

	result, err := fn(ctx, rankingParams(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// rankingParams reads every ranking parameter; each leaderboard ignores the
// ones it does not use.
func rankingParams(c *gin.Context) service.RankingParams {
	return service.RankingParams{
		Prefecture: c.Query("prefecture"),
		Limit:      queryInt(c, "limit"),
		Period:     c.Query("period"),
		Year:       queryIntPtr(c, "year"),
		MinVisits:  queryIntPtr(c, "min_visits"),
		Days:       queryIntPtr(c, "days"),
		MinRating:  queryFloatPtr(c, "min_rating"),
		MaxVisits:  queryIntPtr(c, "max_visits"),
	}
}
