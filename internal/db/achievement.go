package db

import (
	"time"

	"gorm.io/gorm"
)

// AchievementUnlock 记录用户解锁的成就
// (UserID, AchievementID) 全局唯一，解锁后永不撤销
type AchievementUnlock struct {
	gorm.Model
	UserID        uint   `gorm:"not null;uniqueIndex:uidx_achievement_user"`
	AchievementID string `gorm:"size:50;not null;uniqueIndex:uidx_achievement_user"`
	UnlockedAt    time.Time
}

// TableName 指定自定义表名。
func (AchievementUnlock) TableName() string {
	return "achievement_unlocks"
}
