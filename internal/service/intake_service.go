package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sipstreak/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
)

// noteSanitizer 清理条目备注中的任何标记，只保留纯文本。
var noteSanitizer = bluemonday.StrictPolicy()

// IntakeService 是摄入台账的核心：校验通过的条目在单个事务里
// 追加到当日日志并同步累计值，并发追加互不丢失。
type IntakeService struct {
	db *gorm.DB
}

// NewIntakeService 构造 IntakeService。
func NewIntakeService(gdb *gorm.DB) *IntakeService {
	return &IntakeService{db: gdb}
}

// AddIntake 将一次摄入记入 (userID, 当日) 的日志。
// 读-改-写在行锁事务内完成；用户累计值在第二个事务内同步递增。
// 校验失败返回 *ValidationError，持久化失败时调用方不得假定条目已记录。
func (s *IntakeService) AddIntake(userID uint, intakeType string, amount int, note string, now time.Time) (*db.DailyLog, error) {
	// 入口处累计值未知，单日上限走放行分支，事务内再做权威校验
	if err := ValidateIntake(intakeType, amount, nil); err != nil {
		return nil, err
	}

	note = strings.TrimSpace(noteSanitizer.Sanitize(note))
	today := db.FormatDate(now)

	var log db.DailyLog

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Entries", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("intake_entries.id ASC")
			}).
			Where("user_id = ? AND log_date = ?", userID, today).
			First(&log)

		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			synthesized, err := synthesizeLog(tx, userID, today)
			if err != nil {
				return err
			}
			log = *synthesized
			if err := tx.Create(&log).Error; err != nil {
				return fmt.Errorf("create daily log: %w", err)
			}
		case result.Error != nil:
			return result.Error
		}

		// 事务内累计值总是可知，单日上限在此处权威校验
		total := log.TotalFor(intakeType)
		if err := CheckDailyLimit(intakeType, amount, &total); err != nil {
			return err
		}

		entry := db.IntakeEntry{
			DailyLogID: log.ID,
			Type:       intakeType,
			Amount:     amount,
			EntryTime:  now.Format(db.TimeLayout),
			Note:       note,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append intake entry: %w", err)
		}

		switch intakeType {
		case db.IntakeWater:
			log.TotalWater += amount
		case db.IntakeProtein:
			log.TotalProtein += amount
		case db.IntakeCalories:
			log.TotalCalories += amount
		}
		log.Entries = append(log.Entries, entry)

		if err := tx.Omit(clause.Associations).Save(&log).Error; err != nil {
			return fmt.Errorf("update daily log totals: %w", err)
		}

		return nil
	}); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("append intake: %w", err)
	}

	if err := s.bumpLifetimeTotal(userID, intakeType, int64(amount)); err != nil {
		return nil, fmt.Errorf("update lifetime totals: %w", err)
	}

	return &log, nil
}

// bumpLifetimeTotal 在行锁事务内递增用户的累计摄入量。
func (s *IntakeService) bumpLifetimeTotal(userID uint, intakeType string, amount int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		switch intakeType {
		case db.IntakeWater:
			user.TotalWaterConsumed += amount
		case db.IntakeProtein:
			user.TotalProteinConsumed += amount
		case db.IntakeCalories:
			user.TotalCaloriesConsumed += amount
		}

		return tx.Save(&user).Error
	})
}

// GetDailyLog 返回指定日期的日志。
// 日志不存在时返回以用户当前目标合成的空日志（不落库）。
func (s *IntakeService) GetDailyLog(userID uint, date string) (*db.DailyLog, error) {
	var log db.DailyLog
	err := s.db.Preload("Entries", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("intake_entries.id ASC")
	}).Where("user_id = ? AND log_date = ?", userID, date).First(&log).Error

	if err == nil {
		return &log, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get daily log: %w", err)
	}

	return synthesizeLog(s.db, userID, date)
}

// GetTodayLog 返回 now 所在日历日的日志。
func (s *IntakeService) GetTodayLog(userID uint, now time.Time) (*db.DailyLog, error) {
	return s.GetDailyLog(userID, db.FormatDate(now))
}

// ListLogsBetween 返回 [start, end] 闭区间内的日志，按日期升序。
func (s *IntakeService) ListLogsBetween(userID uint, start, end string) ([]db.DailyLog, error) {
	var logs []db.DailyLog
	if err := s.db.Preload("Entries").
		Where("user_id = ? AND log_date BETWEEN ? AND ?", userID, start, end).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	return logs, nil
}

// synthesizeLog 用用户当前目标生成指定日期的空日志。
func synthesizeLog(tx *gorm.DB, userID uint, date string) (*db.DailyLog, error) {
	var user db.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user for log defaults: %w", err)
	}

	return &db.DailyLog{
		UserID:      userID,
		LogDate:     date,
		WaterGoal:   user.WaterGoal,
		ProteinGoal: user.ProteinGoal,
		CalorieGoal: user.CalorieGoal,
	}, nil
}
