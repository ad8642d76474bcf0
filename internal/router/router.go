package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sipstreak/internal/handler"
	"github.com/sipstreak/internal/metrics"
)

// SetupRouter 配置 Gin 引擎和路由。
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("sipstreak_session", store))
	r.Use(metrics.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/register", api.Register)
		v1.POST("/login", api.Login)
		v1.POST("/logout", api.Logout)
		v1.GET("/goals/recommend", api.RecommendGoals)

		// 需要认证的路由
		auth := v1.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/profile", api.GetProfile)
			auth.PUT("/profile", api.UpdateProfile)

			auth.POST("/intakes", api.AddIntake)
			auth.GET("/logs/today", api.GetTodayLog)
			auth.GET("/logs/:date", api.GetLogByDate)
			auth.GET("/logs", api.ListLogs)

			auth.GET("/stats", api.GetStats)
			auth.GET("/achievements", api.ListAchievements)
			auth.GET("/live", api.LiveUpdates)
		}
	}

	return r
}
