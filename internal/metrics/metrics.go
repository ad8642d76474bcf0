package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReqCount 统计 HTTP 请求总量
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sipstreak_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ReqDuration 统计请求耗时分布
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sipstreak_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	// IntakeCount 统计成功记录的摄入条目
	IntakeCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sipstreak_intake_entries_total",
			Help: "Recorded intake entries by type",
		},
		[]string{"type"},
	)

	// AchievementCount 统计成就解锁次数
	AchievementCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sipstreak_achievements_unlocked_total",
			Help: "Achievements unlocked",
		},
		[]string{"achievement_id"},
	)
)

// Register 将指标注册到 Prometheus 默认注册表。
func Register() {
	prometheus.MustRegister(ReqCount, ReqDuration, IntakeCount, AchievementCount)
}

// Middleware 记录每个请求的计数与耗时。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		ReqCount.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		ReqDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
