package service

import (
	"testing"
	"time"

	"github.com/sipstreak/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStreakTestDB(t *testing.T) func() {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.DailyLog{}, &db.IntakeEntry{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// seedLog 落库一条指定达标状态的日志。
func seedLog(t *testing.T, userID uint, date string, met bool) {
	t.Helper()

	log := db.DailyLog{
		UserID:      userID,
		LogDate:     date,
		WaterGoal:   2000,
		ProteinGoal: 100,
		CalorieGoal: 2000,
	}
	if met {
		log.TotalWater = 2000
		log.TotalProtein = 100
		log.TotalCalories = 2000
	}
	if err := db.DB.Create(&log).Error; err != nil {
		t.Fatalf("failed to seed log for %s: %v", date, err)
	}
}

func TestUpdateStreakContinues(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	user := newTestUser(t, "streak-continue@example.com")
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.Local)

	// 昨日达标 + 今日达标，已有连续 5 天
	db.DB.Model(user).Updates(map[string]interface{}{
		"current_streak":   5,
		"longest_streak":   5,
		"last_streak_date": "2024-06-09",
	})
	seedLog(t, user.ID, "2024-06-09", true)
	seedLog(t, user.ID, "2024-06-10", true)

	svc := NewStreakService(db.DB)
	streak, err := svc.UpdateStreak(user.ID, now)
	if err != nil {
		t.Fatalf("UpdateStreak returned error: %v", err)
	}
	if streak != 6 {
		t.Fatalf("expected streak 6, got %d", streak)
	}

	var reloaded db.User
	db.DB.First(&reloaded, user.ID)
	if reloaded.LongestStreak != 6 {
		t.Fatalf("expected longest streak 6, got %d", reloaded.LongestStreak)
	}
}

func TestUpdateStreakRestartsWhenYesterdayMissed(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	user := newTestUser(t, "streak-restart@example.com")
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.Local)

	db.DB.Model(user).Updates(map[string]interface{}{"longest_streak": 9})
	seedLog(t, user.ID, "2024-06-09", false)
	seedLog(t, user.ID, "2024-06-10", true)

	svc := NewStreakService(db.DB)
	streak, err := svc.UpdateStreak(user.ID, now)
	if err != nil {
		t.Fatalf("UpdateStreak returned error: %v", err)
	}
	if streak != 1 {
		t.Fatalf("expected streak 1, got %d", streak)
	}

	// LongestStreak 只增不减
	var reloaded db.User
	db.DB.First(&reloaded, user.ID)
	if reloaded.LongestStreak != 9 {
		t.Fatalf("longest streak must not shrink, got %d", reloaded.LongestStreak)
	}
}

func TestUpdateStreakResetsWhenTodayMissed(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	user := newTestUser(t, "streak-reset@example.com")
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.Local)

	db.DB.Model(user).Updates(map[string]interface{}{"current_streak": 7, "longest_streak": 7})
	seedLog(t, user.ID, "2024-06-09", true)
	seedLog(t, user.ID, "2024-06-10", false)

	svc := NewStreakService(db.DB)
	streak, err := svc.UpdateStreak(user.ID, now)
	if err != nil {
		t.Fatalf("UpdateStreak returned error: %v", err)
	}
	if streak != 0 {
		t.Fatalf("expected streak 0, got %d", streak)
	}
}

func TestUpdateStreakTreatsMissingYesterdayAsNotMet(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	user := newTestUser(t, "streak-missing@example.com")
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.Local)

	// 昨日无日志
	seedLog(t, user.ID, "2024-06-10", true)

	svc := NewStreakService(db.DB)
	streak, err := svc.UpdateStreak(user.ID, now)
	if err != nil {
		t.Fatalf("UpdateStreak returned error: %v", err)
	}
	if streak != 1 {
		t.Fatalf("expected streak 1 with missing yesterday, got %d", streak)
	}
}

func TestUpdateStreakIdempotent(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	user := newTestUser(t, "streak-idempotent@example.com")
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.Local)

	db.DB.Model(user).Updates(map[string]interface{}{
		"current_streak":   3,
		"longest_streak":   3,
		"last_streak_date": "2024-06-09",
	})
	seedLog(t, user.ID, "2024-06-09", true)
	seedLog(t, user.ID, "2024-06-10", true)

	svc := NewStreakService(db.DB)

	first, err := svc.UpdateStreak(user.ID, now)
	if err != nil {
		t.Fatalf("first UpdateStreak returned error: %v", err)
	}
	second, err := svc.UpdateStreak(user.ID, now)
	if err != nil {
		t.Fatalf("second UpdateStreak returned error: %v", err)
	}

	if first != 4 || second != 4 {
		t.Fatalf("repeated evaluation must not inflate the streak: first=%d second=%d", first, second)
	}
}

func TestUpdateStreakUnknownUser(t *testing.T) {
	cleanup := setupStreakTestDB(t)
	defer cleanup()

	svc := NewStreakService(db.DB)
	if _, err := svc.UpdateStreak(4242, time.Now()); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
