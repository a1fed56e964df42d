package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"debate_arena/internal/api/handlers"
	"debate_arena/internal/middleware"
	"debate_arena/internal/service"
	"debate_arena/internal/storage"
	"debate_arena/internal/utils"
	"debate_arena/pkg/config"
)

func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenManager, files *storage.FileStore, cfg config.ServerConfig, logger *zap.Logger) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User, logger)
	roomHandler := handlers.NewRoomHandler(services.Room, logger)
	debateHandler := handlers.NewDebateHandler(services.Debate, logger)
	spectatorHandler := handlers.NewSpectatorHandler(services.Spectator, logger)
	wsHandler := handlers.NewWebSocketHandler(services.Room, services.Hub, logger)

	r.Use(middleware.RequestLogger(logger))
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(cfg.CorsOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 上傳的語音檔
	if files != nil {
		r.Static("/uploads", files.Dir())
	}

	// API 路由群組
	api := r.Group("/api")

	// 公開路由
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/rooms/list", roomHandler.ListRooms)
		api.GET("/rooms/:id", roomHandler.GetRoom)

		api.GET("/debate/:id/status", debateHandler.Status)
		api.GET("/debate/:id/transcript", debateHandler.Transcript)
		api.GET("/debate/:id/result", debateHandler.Result)

		api.GET("/spectators/:id/stats", spectatorHandler.Stats)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		authorized.GET("/auth/me", authHandler.Me)

		rooms := authorized.Group("/rooms")
		{
			rooms.POST("/create", roomHandler.CreateRoom)
			rooms.GET("/code/:code", roomHandler.GetRoomByCode)
			rooms.GET("/:id/ws", wsHandler.HandleWebSocket) // 房間即時事件
		}

		participants := authorized.Group("/participants")
		{
			participants.POST("/join", roomHandler.JoinRoom)
			participants.DELETE("/:id/leave", roomHandler.LeaveRoom)
		}

		spectators := authorized.Group("/spectators")
		{
			spectators.POST("/join", roomHandler.JoinAsSpectator)
			spectators.POST("/:id/reward", spectatorHandler.Reward)
		}

		debate := authorized.Group("/debate")
		{
			debate.POST("/:id/submit-turn", debateHandler.SubmitTurn)
			debate.POST("/:id/submit-audio", debateHandler.SubmitAudio)
			debate.POST("/:id/end", debateHandler.EndDebate)
		}

		authorized.POST("/ai/final-score", debateHandler.FinalScore)
	}
}
