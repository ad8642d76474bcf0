package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetStats 统计 start/end 闭区间，缺省为最近 7 天。
func (a *API) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	start := c.Query("start")
	end := c.Query("end")

	if start == "" && end == "" {
		summary, err := a.stats.LastWeek(userID, time.Now())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
		return
	}

	summary, err := a.stats.Summarize(userID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
