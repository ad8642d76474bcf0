package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sipstreak/internal/config"
	"github.com/sipstreak/internal/db"
	"github.com/sipstreak/internal/handler"
	"github.com/sipstreak/internal/logging"
	"github.com/sipstreak/internal/metrics"
	"github.com/sipstreak/internal/router"
)

func main() {
	// .env 缺失时静默回退到进程环境变量
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger := logging.New(cfg.LogPath)
	defer logger.Sync()

	metrics.Register()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	api := handler.NewAPI(db.DB, logger)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
