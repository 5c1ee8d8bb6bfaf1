package handlers

import (
	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/services"
	"github.com/gin-gonic/gin"
)

type QuestHandler struct {
	questService *services.QuestService
}

func NewQuestHandler(questService *services.QuestService) *QuestHandler {
	return &QuestHandler{
		questService: questService,
	}
}

func (h *QuestHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	quests := router.Group("/quests", authMiddleware)
	{
		quests.GET("", h.GetMyQuests)
		quests.POST("/daily", h.GenerateDailyQuests)
	}
}

func (h *QuestHandler) GetMyQuests(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	quests, err := h.questService.GetPlayerQuests(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, quests)
}

func (h *QuestHandler) GenerateDailyQuests(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	if err := h.questService.GenerateDailyQuests(c.Request.Context(), playerID); err != nil {
		InternalServerError(c, err.Error())
		return
	}

	quests, err := h.questService.GetPlayerQuests(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, quests)
}
