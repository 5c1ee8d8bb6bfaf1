package handlers

import (
	"context"

	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/battle"
	"github.com/ahmetkoprulu/rtqb/internal/services"
	"github.com/gin-gonic/gin"
)

type BattleHandler struct {
	battleManager *battle.Manager
	battleService *services.BattleService
}

func NewBattleHandler(battleManager *battle.Manager, battleService *services.BattleService) *BattleHandler {
	return &BattleHandler{
		battleManager: battleManager,
		battleService: battleService,
	}
}

func (h *BattleHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	battles := router.Group("/battles", authMiddleware)
	{
		battles.POST("", h.StartBattle)
		battles.GET("/current", h.GetCurrentBattle)
		battles.POST("/current/answers", h.SubmitAnswer)
		battles.DELETE("/current", h.DismissBattle)
		battles.GET("/recover", h.RecoverBattle)
		battles.GET("/history", h.GetHistory)
		battles.GET("/stats", h.GetStats)
	}
}

func (h *BattleHandler) StartBattle(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	model := BindModel[StartBattleRequest](c)
	if model == nil {
		return
	}

	// The engine outlives the request; its lifecycle is bound to the
	// process, not to this handler.
	engine, err := h.battleManager.StartBattle(context.Background(), playerID, model.Category, model.Difficulty)
	if err != nil {
		if err == battle.ErrBattleInProgress {
			Conflict(c, err.Error())
			return
		}
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, engine.Session())
}

func (h *BattleHandler) GetCurrentBattle(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	engine, ok := h.battleManager.Engine(playerID)
	if !ok {
		NotFound(c, "no battle in progress")
		return
	}

	Ok(c, engine.Session())
}

func (h *BattleHandler) SubmitAnswer(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	model := BindModel[SubmitAnswerRequest](c)
	if model == nil {
		return
	}

	engine, ok := h.battleManager.Engine(playerID)
	if !ok {
		NotFound(c, "no battle in progress")
		return
	}

	correct, err := engine.SubmitAnswer(model.QuestionIndex, model.AnswerIndex, model.TimeSpent)
	if err != nil {
		switch err {
		case battle.ErrBattleNotActive, battle.ErrAlreadyAnswered:
			Conflict(c, err.Error())
		default:
			BadRequest(c, err.Error())
		}
		return
	}

	Ok(c, SubmitAnswerResponse{
		Correct: correct,
		Session: engine.Session(),
	})
}

func (h *BattleHandler) DismissBattle(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	h.battleManager.Dismiss(c.Request.Context(), playerID)
	Ok(c, "battle dismissed")
}

func (h *BattleHandler) RecoverBattle(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	session, err := h.battleService.RecoverSession(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	if session == nil {
		NotFound(c, "no recoverable battle")
		return
	}

	Ok(c, session)
}

func (h *BattleHandler) GetHistory(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	history, err := h.battleService.GetHistory(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, history)
}

func (h *BattleHandler) GetStats(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	stats, err := h.battleService.GetStats(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, stats)
}

// StartBattleRequest narrows the question pool for the new battle
type StartBattleRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type SubmitAnswerRequest struct {
	QuestionIndex int     `json:"question_index" binding:"min=0"`
	AnswerIndex   int     `json:"answer_index" binding:"min=0"`
	TimeSpent     float64 `json:"time_spent" binding:"min=0"`
}

type SubmitAnswerResponse struct {
	Correct bool `json:"correct"`
	Session any  `json:"session"`
}
