package handlers

import (
	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/gin-gonic/gin"
)

type EffectHandler struct {
	effectManager *effects.Manager
}

func NewEffectHandler(effectManager *effects.Manager) *EffectHandler {
	return &EffectHandler{
		effectManager: effectManager,
	}
}

func (h *EffectHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	router.GET("/effects", authMiddleware, h.GetActiveEffects)
}

func (h *EffectHandler) GetActiveEffects(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	ledger := h.effectManager.Ledger(playerID)
	Ok(c, EffectsResponse{
		Effects:     ledger.Active(),
		Multipliers: ledger.Multipliers(),
	})
}

type EffectsResponse struct {
	Effects     any `json:"effects"`
	Multipliers any `json:"multipliers"`
}
