package handlers

import (
	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/services"
	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
	}
}

func (h *AchievementHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	achievements := router.Group("/achievements", authMiddleware)
	{
		achievements.GET("", h.GetMyAchievements)
		achievements.POST("/evaluate", h.Evaluate)
	}
}

func (h *AchievementHandler) GetMyAchievements(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	achievements, err := h.achievementService.GetPlayerAchievements(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, achievements)
}

func (h *AchievementHandler) Evaluate(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	unlocked, err := h.achievementService.Evaluate(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, unlocked)
}
