package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sipstreak/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupIntakeTestDB(t *testing.T) func() {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.DailyLog{}, &db.IntakeEntry{}, &db.AchievementUnlock{}); err != nil {
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

// newTestUser 落库一个带默认目标的用户，供台账相关用例复用。
func newTestUser(t *testing.T, email string) *db.User {
	t.Helper()

	user := db.User{
		UserUID:       fmt.Sprintf("uid-%s", email),
		Email:         email,
		PasswordHash:  "x",
		DisplayName:   "测试用户",
		ActivityLevel: db.ActivityModerate,
		WaterGoal:     db.DefaultWaterGoal,
		ProteinGoal:   db.DefaultProteinGoal,
		CalorieGoal:   db.DefaultCalorieGoal,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func TestAddIntakeAppendsAndSumsTotals(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "ledger@example.com")
	svc := NewIntakeService(db.DB)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.Local)

	for i, amount := range []int{300, 500, 200} {
		log, err := svc.AddIntake(user.ID, db.IntakeWater, amount, "", now.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("AddIntake #%d returned error: %v", i+1, err)
		}
		if len(log.Entries) != i+1 {
			t.Fatalf("expected %d entries, got %d", i+1, len(log.Entries))
		}
	}

	log, err := svc.GetDailyLog(user.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("GetDailyLog returned error: %v", err)
	}

	if log.TotalWater != 1000 {
		t.Fatalf("expected total water 1000, got %d", log.TotalWater)
	}
	if len(log.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(log.Entries))
	}

	// 总和不变式：每类总计等于对应条目之和
	sum := 0
	for _, e := range log.Entries {
		if e.Type != db.IntakeWater {
			t.Fatalf("unexpected entry type %s", e.Type)
		}
		sum += e.Amount
	}
	if sum != log.TotalWater {
		t.Fatalf("total %d does not equal entry sum %d", log.TotalWater, sum)
	}

	// 快照目标来自用户当前配置
	if log.WaterGoal != db.DefaultWaterGoal || log.ProteinGoal != db.DefaultProteinGoal {
		t.Fatalf("unexpected goal snapshot: %+v", log)
	}
}

func TestAddIntakeBumpsLifetimeTotals(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "lifetime@example.com")
	svc := NewIntakeService(db.DB)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

	if _, err := svc.AddIntake(user.ID, db.IntakeProtein, 40, "", now); err != nil {
		t.Fatalf("AddIntake returned error: %v", err)
	}
	if _, err := svc.AddIntake(user.ID, db.IntakeCalories, 650, "", now); err != nil {
		t.Fatalf("AddIntake returned error: %v", err)
	}

	var reloaded db.User
	if err := db.DB.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}

	if reloaded.TotalProteinConsumed != 40 {
		t.Fatalf("expected lifetime protein 40, got %d", reloaded.TotalProteinConsumed)
	}
	if reloaded.TotalCaloriesConsumed != 650 {
		t.Fatalf("expected lifetime calories 650, got %d", reloaded.TotalCaloriesConsumed)
	}
	if reloaded.TotalWaterConsumed != 0 {
		t.Fatalf("expected lifetime water untouched, got %d", reloaded.TotalWaterConsumed)
	}
}

func TestAddIntakeRejectsInvalidAmounts(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "reject@example.com")
	svc := NewIntakeService(db.DB)
	now := time.Now()

	// 单次上限
	if _, err := svc.AddIntake(user.ID, db.IntakeWater, 2500, "", now); err == nil {
		t.Fatal("expected rejection for 2500ml single intake")
	}

	// 非正数
	var verr *ValidationError
	_, err := svc.AddIntake(user.ID, db.IntakeWater, 0, "", now)
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// 校验失败不得留下任何痕迹
	var logCount, entryCount int64
	db.DB.Model(&db.DailyLog{}).Count(&logCount)
	db.DB.Model(&db.IntakeEntry{}).Count(&entryCount)
	if logCount != 0 || entryCount != 0 {
		t.Fatalf("rejected intake must not persist anything: logs=%d entries=%d", logCount, entryCount)
	}
}

func TestAddIntakeEnforcesDailyCeiling(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "ceiling@example.com")
	svc := NewIntakeService(db.DB)
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.Local)

	// 5 次 2000ml 刚好到达 10000ml 上限
	for i := 0; i < 5; i++ {
		if _, err := svc.AddIntake(user.ID, db.IntakeWater, 2000, "", now); err != nil {
			t.Fatalf("intake #%d should pass: %v", i+1, err)
		}
	}

	// 第 6 次突破上限被拒
	_, err := svc.AddIntake(user.ID, db.IntakeWater, 100, "", now)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected daily ceiling rejection, got %v", err)
	}

	log, err := svc.GetDailyLog(user.ID, "2024-06-02")
	if err != nil {
		t.Fatalf("GetDailyLog returned error: %v", err)
	}
	if log.TotalWater != 10000 || len(log.Entries) != 5 {
		t.Fatalf("rejected intake leaked into log: total=%d entries=%d", log.TotalWater, len(log.Entries))
	}
}

func TestAddIntakeSanitizesNote(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "note@example.com")
	svc := NewIntakeService(db.DB)

	log, err := svc.AddIntake(user.ID, db.IntakeWater, 250, `<script>alert(1)</script>早餐一杯`, time.Now())
	if err != nil {
		t.Fatalf("AddIntake returned error: %v", err)
	}

	if log.Entries[0].Note != "早餐一杯" {
		t.Fatalf("expected sanitized note, got %q", log.Entries[0].Note)
	}
}

func TestConcurrentAddIntakeLosesNoUpdates(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	// 单连接池让事务在驱动层串行化，验证读-改-写本身不丢更新
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	user := newTestUser(t, "concurrent@example.com")
	svc := NewIntakeService(db.DB)
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.Local)

	amounts := []int{100, 200}
	var wg sync.WaitGroup
	errs := make(chan error, len(amounts))

	for _, amount := range amounts {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.AddIntake(user.ID, db.IntakeWater, n, "", now); err != nil {
				errs <- err
			}
		}(amount)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent AddIntake failed: %v", err)
	}

	log, err := svc.GetDailyLog(user.ID, "2024-06-03")
	if err != nil {
		t.Fatalf("GetDailyLog returned error: %v", err)
	}

	if log.TotalWater != 300 {
		t.Fatalf("expected total 300 after concurrent adds, got %d", log.TotalWater)
	}
	if len(log.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(log.Entries))
	}

	var reloaded db.User
	if err := db.DB.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.TotalWaterConsumed != 300 {
		t.Fatalf("expected lifetime water 300, got %d", reloaded.TotalWaterConsumed)
	}
}

func TestGetDailyLogSynthesizesDefault(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "default@example.com")
	svc := NewIntakeService(db.DB)

	log, err := svc.GetDailyLog(user.ID, "2024-06-10")
	if err != nil {
		t.Fatalf("GetDailyLog returned error: %v", err)
	}

	if log.ID != 0 {
		t.Fatal("synthesized log must not be persisted")
	}
	if log.WaterGoal != db.DefaultWaterGoal || log.TotalWater != 0 {
		t.Fatalf("unexpected synthesized log: %+v", log)
	}

	// 无写入时重复读取结果一致
	again, err := svc.GetDailyLog(user.ID, "2024-06-10")
	if err != nil {
		t.Fatalf("second GetDailyLog returned error: %v", err)
	}
	if again.TotalWater != log.TotalWater || again.TotalProtein != log.TotalProtein || again.TotalCalories != log.TotalCalories {
		t.Fatal("repeated reads must return identical totals")
	}

	// 不存在的用户无法合成默认日志
	if _, err := svc.GetDailyLog(9999, "2024-06-10"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListLogsBetween(t *testing.T) {
	cleanup := setupIntakeTestDB(t)
	defer cleanup()

	user := newTestUser(t, "range@example.com")
	svc := NewIntakeService(db.DB)

	for _, day := range []int{1, 3, 5} {
		now := time.Date(2024, 7, day, 9, 0, 0, 0, time.Local)
		if _, err := svc.AddIntake(user.ID, db.IntakeWater, 500, "", now); err != nil {
			t.Fatalf("AddIntake returned error: %v", err)
		}
	}

	logs, err := svc.ListLogsBetween(user.ID, "2024-07-01", "2024-07-04")
	if err != nil {
		t.Fatalf("ListLogsBetween returned error: %v", err)
	}

	if len(logs) != 2 {
		t.Fatalf("expected 2 logs in range, got %d", len(logs))
	}
	if logs[0].LogDate != "2024-07-01" || logs[1].LogDate != "2024-07-03" {
		t.Fatalf("unexpected order: %s, %s", logs[0].LogDate, logs[1].LogDate)
	}
}
