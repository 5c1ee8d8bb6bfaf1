package handlers

import (
	"strconv"

	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/config"
	"github.com/ahmetkoprulu/rtqb/internal/rewards"
	"github.com/ahmetkoprulu/rtqb/internal/services"
	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
	}
}

func (h *PlayerHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	player := router.Group("/players", authMiddleware)
	{
		player.GET("/me", h.GetMyPlayer)
		player.GET("/me/activities", h.GetMyActivities)
		player.PUT("/me/streak", h.UpdateStreak)
	}
}

func (h *PlayerHandler) GetMyPlayer(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	player, err := h.playerService.GetPlayerByID(c.Request.Context(), playerID)
	if err != nil {
		if err == services.ErrPlayerNotFound {
			NotFound(c, "player not found")
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	cfg := config.GetGameConfig()
	xpForNext := 0
	if player.Level < cfg.Levels.MaxLevel {
		xpForNext = rewards.XPForLevel(cfg.Levels, player.Level)
	}

	Ok(c, PlayerProfileResponse{
		Player:         player,
		XPForNextLevel: xpForNext,
		LevelProgress:  rewards.ProgressToNextLevel(cfg.Levels, player.XP),
	})
}

func (h *PlayerHandler) GetMyActivities(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	activities, err := h.playerService.GetActivities(c.Request.Context(), playerID, limit)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, activities)
}

func (h *PlayerHandler) UpdateStreak(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	model := BindModel[UpdateStreakRequest](c)
	if model == nil {
		return
	}

	if err := h.playerService.UpdateStreak(c.Request.Context(), playerID, model.Streak); err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, model.Streak)
}

type PlayerProfileResponse struct {
	Player         any `json:"player"`
	XPForNextLevel int `json:"xp_for_next_level"`
	LevelProgress  int `json:"level_progress"`
}

// UpdateStreakRequest sets the player's daily login streak
type UpdateStreakRequest struct {
	Streak int `json:"streak" binding:"min=0"`
}
