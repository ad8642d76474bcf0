package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAchievements 返回完整成就目录及当前用户的解锁状态。
func (a *API) ListAchievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := a.tracker.Achievements().ListForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]gin.H, 0, len(items))
	for _, item := range items {
		view := gin.H{
			"achievement_id": item.AchievementID,
			"title":          item.Title,
			"description":    item.Description,
			"icon":           item.Icon,
			"requirement":    item.Requirement,
			"category":       item.Category,
			"unlocked":       item.Unlocked,
		}
		if item.UnlockedAt != nil {
			view["unlocked_at"] = item.UnlockedAt
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"achievements": views})
}
