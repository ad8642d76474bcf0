package service

import (
	"errors"
	"time"

	"github.com/sipstreak/internal/db"
	"github.com/sipstreak/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IntakeResult 汇总一次摄入动作的全部结果。
type IntakeResult struct {
	Log           *db.DailyLog
	Streak        int
	NewlyUnlocked []string
}

// TrackerService 串联摄入记录、连续达标评估与成就评估。
// 摄入一旦落库即视为成功，后两步失败仅记日志不回滚。
type TrackerService struct {
	intakes      *IntakeService
	streaks      *StreakService
	achievements *AchievementService
	hub          *LiveHub
	logger       *zap.Logger
}

// NewTrackerService 构造 TrackerService，hub 可为 nil。
func NewTrackerService(gdb *gorm.DB, catalog []Achievement, hub *LiveHub, logger *zap.Logger) *TrackerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackerService{
		intakes:      NewIntakeService(gdb),
		streaks:      NewStreakService(gdb),
		achievements: NewAchievementService(gdb, catalog),
		hub:          hub,
		logger:       logger,
	}
}

// Intakes 暴露台账服务，供查询接口复用。
func (s *TrackerService) Intakes() *IntakeService { return s.intakes }

// Streaks 暴露连续达标服务。
func (s *TrackerService) Streaks() *StreakService { return s.streaks }

// Achievements 暴露成就服务。
func (s *TrackerService) Achievements() *AchievementService { return s.achievements }

// LogIntake 记录一次摄入并触发下游评估。
// 返回错误仅当摄入本身未能落库；评估失败不影响已记录的条目。
func (s *TrackerService) LogIntake(userID uint, intakeType string, amount int, note string, now time.Time) (*IntakeResult, error) {
	log, err := s.intakes.AddIntake(userID, intakeType, amount, note, now)
	if err != nil {
		return nil, err
	}

	metrics.IntakeCount.WithLabelValues(intakeType).Inc()
	result := &IntakeResult{Log: log}

	streak, err := s.streaks.UpdateStreak(userID, now)
	if err != nil {
		s.logger.Warn("streak_update_failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	} else {
		result.Streak = streak
	}

	unlocked, err := s.achievements.CheckAchievements(userID, now)
	if err != nil {
		s.logger.Warn("achievement_check_failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	} else {
		result.NewlyUnlocked = unlocked
		for _, id := range unlocked {
			metrics.AchievementCount.WithLabelValues(id).Inc()
		}
	}

	s.publish(userID, result)

	return result, nil
}

// publish 将最新快照推送给在线订阅端。
func (s *TrackerService) publish(userID uint, result *IntakeResult) {
	if s.hub == nil {
		return
	}

	s.hub.Broadcast(userID, "daily_log.updated", result.Log)

	var user db.User
	if err := s.intakes.db.First(&user, userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("publish_user_snapshot_failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return
	}
	user.PasswordHash = ""
	s.hub.Broadcast(userID, "user.updated", &user)
}
