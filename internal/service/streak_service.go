package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/sipstreak/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakService 负责连续达标天数的推进与清零。
type StreakService struct {
	db *gorm.DB
}

// NewStreakService 构造 StreakService。
func NewStreakService(gdb *gorm.DB) *StreakService {
	return &StreakService{db: gdb}
}

// UpdateStreak 根据今昨两天的达标情况重算连续天数并持久化。
// 规则：今日达标时，昨日也达标则 +1 否则重新从 1 开始；今日未达标归零。
// 数据不变时重复调用结果一致，LongestStreak 只增不减。
func (s *StreakService) UpdateStreak(userID uint, now time.Time) (int, error) {
	todayMet, err := s.goalsMetOn(userID, db.FormatDate(now))
	if err != nil {
		return 0, err
	}

	yesterdayMet, err := s.goalsMetOn(userID, db.FormatDate(now.AddDate(0, 0, -1)))
	if err != nil {
		return 0, err
	}

	var newStreak int

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		today := db.FormatDate(now)

		switch {
		case todayMet && user.LastStreakDate == today:
			// 今日已计入，重复评估保持不变
			newStreak = user.CurrentStreak
		case todayMet && yesterdayMet:
			newStreak = user.CurrentStreak + 1
			user.LastStreakDate = today
		case todayMet:
			newStreak = 1
			user.LastStreakDate = today
		default:
			newStreak = 0
			user.LastStreakDate = ""
		}

		user.CurrentStreak = newStreak
		if newStreak > user.LongestStreak {
			user.LongestStreak = newStreak
		}

		return tx.Save(&user).Error
	}); err != nil {
		return 0, fmt.Errorf("update streak: %w", err)
	}

	return newStreak, nil
}

// goalsMetOn 判断指定日期是否三项目标全部达标，缺失的日志视为未达标。
func (s *StreakService) goalsMetOn(userID uint, date string) (bool, error) {
	var log db.DailyLog
	err := s.db.Where("user_id = ? AND log_date = ?", userID, date).First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load log for %s: %w", date, err)
	}
	return log.GoalsMet(), nil
}
