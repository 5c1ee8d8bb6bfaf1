package handlers

import (
	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/services"
	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	productService *services.ProductService
}

func NewStoreHandler(productService *services.ProductService) *StoreHandler {
	return &StoreHandler{
		productService: productService,
	}
}

func (h *StoreHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	store := router.Group("/store")
	{
		store.GET("/products", h.GetProducts)
		store.POST("/purchase", authMiddleware, h.PurchaseProduct)
	}

	inventory := router.Group("/inventory", authMiddleware)
	{
		inventory.GET("", h.GetInventory)
		inventory.POST("/:id/activate", h.ActivateItem)
	}
}

func (h *StoreHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.GetProducts(c.Request.Context())
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, products)
}

func (h *StoreHandler) PurchaseProduct(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	model := BindModel[PurchaseRequest](c)
	if model == nil {
		return
	}

	entry, err := h.productService.PurchaseProduct(c.Request.Context(), playerID, model.ProductID)
	if err != nil {
		switch err {
		case services.ErrProductNotFound:
			NotFound(c, err.Error())
		case services.ErrInsufficientFunds:
			Conflict(c, err.Error())
		default:
			InternalServerError(c, err.Error())
		}
		return
	}

	Ok(c, entry)
}

func (h *StoreHandler) GetInventory(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	inventory, err := h.productService.GetInventory(c.Request.Context(), playerID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}

	Ok(c, inventory)
}

func (h *StoreHandler) ActivateItem(c *gin.Context) {
	playerID := c.GetString(middleware.PlayerIDKey)
	if playerID == "" {
		BadRequest(c, "playerID is required")
		return
	}

	effect, err := h.productService.ActivateItem(c.Request.Context(), playerID, c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrInventoryItemNotFound:
			NotFound(c, err.Error())
		case services.ErrItemNotActivatable:
			BadRequest(c, err.Error())
		default:
			InternalServerError(c, err.Error())
		}
		return
	}

	Ok(c, effect)
}

type PurchaseRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}
