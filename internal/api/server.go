package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ahmetkoprulu/rtqb/common/cache"
	"github.com/ahmetkoprulu/rtqb/common/data"
	"github.com/ahmetkoprulu/rtqb/common/mq"
	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/internal/api/handlers"
	"github.com/ahmetkoprulu/rtqb/internal/api/middleware"
	"github.com/ahmetkoprulu/rtqb/internal/battle"
	"github.com/ahmetkoprulu/rtqb/internal/config"
	"github.com/ahmetkoprulu/rtqb/internal/effects"
	"github.com/ahmetkoprulu/rtqb/internal/services"
	"github.com/ahmetkoprulu/rtqb/internal/websocket"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router        *gin.Engine
	httpServer    *http.Server
	wsServer      *websocket.Server
	battleManager *battle.Manager
	effectManager *effects.Manager
	db            *data.PgDbContext
}

func NewServer(db *data.PgDbContext, sessions cache.Cache, publisher *mq.GameEventPublisher, effectManager *effects.Manager) *Server {
	authService := services.NewAuthService(db)
	playerService := services.NewPlayerService(db, publisher)
	questService := services.NewQuestService(db, playerService)
	achievementService := services.NewAchievementService(db, playerService)
	questionService := services.NewQuestionService(db)
	battleService := services.NewBattleService(db, sessions, publisher, playerService, questService, achievementService)
	effectService := services.NewEffectService(db, effectManager, playerService)
	productService := services.NewProductService(db, playerService, effectService)

	effectManager.OnExpire(func(e *models.Effect) {
		// Prune after the ledger has reversed the contribution.
		if err := effectService.DeleteEffect(context.Background(), e.ID); err != nil {
			utils.Logger.Warn("failed to prune expired effect", zap.String("effect_id", e.ID), zap.Error(err))
		}
	})

	if err := effectService.SeedLedgers(context.Background()); err != nil {
		utils.Logger.Warn("failed to seed effect ledgers", zap.Error(err))
	}

	gameConfig := config.GetGameConfig()
	battleManager := battle.NewManager(gameConfig.Battle, questionService, battleService, battleService, effectManager)
	wsServer := websocket.NewServer(battleManager)

	server := &Server{
		router:        gin.Default(),
		wsServer:      wsServer,
		battleManager: battleManager,
		effectManager: effectManager,
		db:            db,
	}

	server.router.Use(middleware.RequestLogger())
	server.router.Use(middleware.CORSMiddleware())
	server.router.Use(middleware.ErrorMiddleware())
	server.router.Use(middleware.RateLimit(100, 200)) // 100 requests per second with burst of 200

	authHandler := handlers.NewAuthHandler(authService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	battleHandler := handlers.NewBattleHandler(battleManager, battleService)
	questHandler := handlers.NewQuestHandler(questService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	storeHandler := handlers.NewStoreHandler(productService)
	effectHandler := handlers.NewEffectHandler(effectManager)
	healthHandler := handlers.NewHealthHandler()
	authMiddleware := middleware.AuthMiddleware()

	healthHandler.RegisterRoutes(server.router.Group(""))

	v1 := server.router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		playerHandler.RegisterRoutes(v1, authMiddleware)
		battleHandler.RegisterRoutes(v1, authMiddleware)
		questHandler.RegisterRoutes(v1, authMiddleware)
		achievementHandler.RegisterRoutes(v1, authMiddleware)
		storeHandler.RegisterRoutes(v1, authMiddleware)
		effectHandler.RegisterRoutes(v1, authMiddleware)
	}

	server.router.GET("/ws", func(c *gin.Context) {
		wsServer.HandleWebSocket(c.Writer, c.Request)
	})

	go wsServer.Run()

	return server
}

func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
