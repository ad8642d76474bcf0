package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sipstreak/internal/db"
)

type addIntakeRequest struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
	Note   string `json:"note"`
}

// AddIntake 记录一次摄入，随后触发连续达标与成就评估。
func (a *API) AddIntake(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req addIntakeRequest
	if !bindJSON(c, &req, "invalid intake payload") {
		return
	}

	result, err := a.tracker.LogIntake(userID, req.Type, req.Amount, req.Note, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"log":            logView(result.Log),
		"streak":         result.Streak,
		"newly_unlocked": result.NewlyUnlocked,
	})
}

// GetTodayLog 返回当日日志，不存在时合成空日志返回。
func (a *API) GetTodayLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	log, err := a.tracker.Intakes().GetTodayLog(userID, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, logView(log))
}

// GetLogByDate 返回指定日期的日志。
func (a *API) GetLogByDate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	date := c.Param("date")
	if _, err := time.Parse(db.DateLayout, date); err != nil {
		respondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	log, err := a.tracker.Intakes().GetDailyLog(userID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, logView(log))
}

// ListLogs 返回 start/end 闭区间内的日志。
func (a *API) ListLogs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	start := c.Query("start")
	end := c.Query("end")
	if _, err := time.Parse(db.DateLayout, start); err != nil {
		respondError(c, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(db.DateLayout, end); err != nil {
		respondError(c, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
		return
	}

	logs, err := a.tracker.Intakes().ListLogsBetween(userID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]gin.H, 0, len(logs))
	for i := range logs {
		views = append(views, logView(&logs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"logs": views})
}

// logView 序列化日志视图。
func logView(log *db.DailyLog) gin.H {
	entries := make([]gin.H, 0, len(log.Entries))
	for _, e := range log.Entries {
		entries = append(entries, gin.H{
			"type":   e.Type,
			"amount": e.Amount,
			"time":   e.EntryTime,
			"note":   e.Note,
		})
	}

	return gin.H{
		"date":           log.LogDate,
		"total_water":    log.TotalWater,
		"total_protein":  log.TotalProtein,
		"total_calories": log.TotalCalories,
		"water_goal":     log.WaterGoal,
		"protein_goal":   log.ProteinGoal,
		"calorie_goal":   log.CalorieGoal,
		"goals_met":      log.GoalsMet(),
		"entries":        entries,
	}
}
