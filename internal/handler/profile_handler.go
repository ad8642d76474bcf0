package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sipstreak/internal/service"
)

// GetProfile 返回当前用户资料。
func (a *API) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := a.accounts.Get(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userView(user))
}

type updateProfileRequest struct {
	DisplayName   string  `json:"display_name"`
	Weight        float64 `json:"weight"`
	ActivityLevel string  `json:"activity_level"`

	WaterGoal   int `json:"water_goal"`
	ProteinGoal int `json:"protein_goal"`
	CalorieGoal int `json:"calorie_goal"`

	ReminderEnabled  bool   `json:"reminder_enabled"`
	ReminderInterval int    `json:"reminder_interval"`
	ReminderStart    string `json:"reminder_start"`
	ReminderEnd      string `json:"reminder_end"`
}

// UpdateProfile 保存资料修改。
func (a *API) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}

	user, err := a.accounts.UpdateProfile(userID, service.ProfileInput{
		DisplayName:      req.DisplayName,
		Weight:           req.Weight,
		ActivityLevel:    req.ActivityLevel,
		WaterGoal:        req.WaterGoal,
		ProteinGoal:      req.ProteinGoal,
		CalorieGoal:      req.CalorieGoal,
		ReminderEnabled:  req.ReminderEnabled,
		ReminderInterval: req.ReminderInterval,
		ReminderStart:    req.ReminderStart,
		ReminderEnd:      req.ReminderEnd,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userView(user))
}

// RecommendGoals 按体重与活动水平推算每日目标。
func (a *API) RecommendGoals(c *gin.Context) {
	weight, err := strconv.ParseFloat(c.Query("weight"), 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid weight")
		return
	}

	level := c.DefaultQuery("activity_level", "moderate")

	goals, err := a.accounts.Recommend(weight, level)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"water_goal":   goals.WaterGoal,
		"protein_goal": goals.ProteinGoal,
		"calorie_goal": goals.CalorieGoal,
	})
}
