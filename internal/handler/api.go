package handler

import (
	"github.com/sipstreak/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API 聚合各 HTTP 处理器共享的依赖。
type API struct {
	accounts *service.AccountService
	tracker  *service.TrackerService
	stats    *service.StatsService
	hub      *service.LiveHub
	logger   *zap.Logger
}

// NewAPI 构造处理器集合并完成服务装配，logger 可为 nil。
func NewAPI(db *gorm.DB, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := service.NewLiveHub()

	return &API{
		accounts: service.NewAccountService(db),
		tracker:  service.NewTrackerService(db, service.DefaultCatalog(), hub, logger),
		stats:    service.NewStatsService(db),
		hub:      hub,
		logger:   logger,
	}
}
