package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"debate_arena/internal/api"
	"debate_arena/internal/repository"
	"debate_arena/internal/service"
	"debate_arena/internal/storage"
	"debate_arena/internal/utils"
	"debate_arena/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 初始化 repositories，memory 驅動不需要資料庫
	var repos *repository.Repositories
	switch cfg.DB.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		repos = repository.NewMemoryRepositories()
	default:
		db, err := storage.NewPostgresDB(cfg.DB)
		if err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		// 確保在程序結束時關閉數據庫連接
		defer db.Close()

		// 自動遷移資料庫結構
		if err := db.AutoMigrate(); err != nil {
			logger.Fatal("failed to auto migrate database", zap.Error(err))
		}
		repos = repository.NewRepositories(db)
	}

	files, err := storage.NewFileStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	services := service.NewServices(repos, files, tokens, logger)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.SetupRoutes(r, services, tokens, files, cfg.Server, logger)

	// 啟動伺服器
	logger.Info("server listening", zap.String("address", cfg.Server.Address))
	if err := r.Run(cfg.Server.Address); err != nil {
		logger.Fatal("failed to run server", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}
