package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sipstreak/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAchievementNotFound 在目录中不存在指定成就时返回
var ErrAchievementNotFound = errors.New("achievement not found")

// AchievementService 对照模板目录评估用户统计，落库新解锁的成就。
// 目录通过构造函数注入，便于测试替换。
type AchievementService struct {
	db      *gorm.DB
	catalog []Achievement
}

// NewAchievementService 构造 AchievementService。
func NewAchievementService(gdb *gorm.DB, catalog []Achievement) *AchievementService {
	return &AchievementService{db: gdb, catalog: catalog}
}

// UserAchievement 合并模板与用户的解锁状态，供列表展示。
type UserAchievement struct {
	Achievement
	Unlocked   bool
	UnlockedAt *time.Time
}

// CheckAchievements 评估所有未解锁模板并返回本次新解锁的成就 ID。
// 解锁记录一次写入，唯一索引保证并发评估不会重复解锁。
func (s *AchievementService) CheckAchievements(userID uint, now time.Time) ([]string, error) {
	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	unlockedIDs, err := s.unlockedSet(userID)
	if err != nil {
		return nil, err
	}

	var newly []string
	for _, tpl := range s.catalog {
		if unlockedIDs[tpl.AchievementID] {
			continue
		}
		if !tpl.Unlockable(&user) {
			continue
		}

		record := db.AchievementUnlock{
			UserID:        userID,
			AchievementID: tpl.AchievementID,
			UnlockedAt:    now,
		}
		insert := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&record)
		if insert.Error != nil {
			return newly, fmt.Errorf("unlock %s: %w", tpl.AchievementID, insert.Error)
		}

		// 只有真正落库的那次评估才算新解锁
		if insert.RowsAffected == 1 {
			newly = append(newly, tpl.AchievementID)
		}
	}

	return newly, nil
}

// ListForUser 返回完整目录并标注用户的解锁状态。
func (s *AchievementService) ListForUser(userID uint) ([]UserAchievement, error) {
	var records []db.AchievementUnlock
	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}

	byID := make(map[string]db.AchievementUnlock, len(records))
	for _, r := range records {
		byID[r.AchievementID] = r
	}

	result := make([]UserAchievement, 0, len(s.catalog))
	for _, tpl := range s.catalog {
		item := UserAchievement{Achievement: tpl}
		if record, ok := byID[tpl.AchievementID]; ok {
			item.Unlocked = true
			unlockedAt := record.UnlockedAt
			item.UnlockedAt = &unlockedAt
		}
		result = append(result, item)
	}

	return result, nil
}

// Template 按 ID 查找模板。
func (s *AchievementService) Template(achievementID string) (Achievement, error) {
	for _, tpl := range s.catalog {
		if tpl.AchievementID == achievementID {
			return tpl, nil
		}
	}
	return Achievement{}, ErrAchievementNotFound
}

// unlockedSet 返回用户已解锁的成就 ID 集合。
func (s *AchievementService) unlockedSet(userID uint) (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&db.AchievementUnlock{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load unlocked ids: %w", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
