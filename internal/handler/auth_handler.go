package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sipstreak/internal/db"
)

const sessionUserKey = "user_id"

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register 创建新账号并直接建立会话。
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, "invalid register payload") {
		return
	}

	user, err := a.accounts.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusCreated, userView(user))
}

// Login 校验凭证并建立会话。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}

	user, err := a.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, userView(user))
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// AuthRequired 是一个简单的认证中间件。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserKey) == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID 返回会话中登记的用户 ID。
func currentUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	raw := session.Get(sessionUserKey)
	if raw == nil {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok
}

// userView 过滤掉不应出站的字段。
func userView(user *db.User) gin.H {
	return gin.H{
		"user_uid":          user.UserUID,
		"email":             user.Email,
		"display_name":      user.DisplayName,
		"weight":            user.Weight,
		"activity_level":    user.ActivityLevel,
		"water_goal":        user.WaterGoal,
		"protein_goal":      user.ProteinGoal,
		"calorie_goal":      user.CalorieGoal,
		"current_streak":    user.CurrentStreak,
		"longest_streak":    user.LongestStreak,
		"total_water":       user.TotalWaterConsumed,
		"total_protein":     user.TotalProteinConsumed,
		"total_calories":    user.TotalCaloriesConsumed,
		"reminder_enabled":  user.ReminderEnabled,
		"reminder_interval": user.ReminderInterval,
		"reminder_start":    user.ReminderStart,
		"reminder_end":      user.ReminderEnd,
	}
}
