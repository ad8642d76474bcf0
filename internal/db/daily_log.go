package db

import (
	"time"

	"gorm.io/gorm"
)

// 摄入类别
const (
	IntakeWater    = "water"
	IntakeProtein  = "protein"
	IntakeCalories = "calories"
)

// DateLayout 是日志主键使用的日历日期格式。
const DateLayout = "2006-01-02"

// TimeLayout 是条目记录时刻的格式。
const TimeLayout = "15:04"

// DailyLog 定义了每用户每天的摄入日志
// (UserID, LogDate) 全局唯一，三个 Total 字段等于对应类别条目金额之和
// 目标字段是创建当天用户目标的快照，之后不随用户资料变化
type DailyLog struct {
	gorm.Model
	UserID  uint   `gorm:"not null;uniqueIndex:uidx_daily_logs_user_date"`
	LogDate string `gorm:"size:10;not null;uniqueIndex:uidx_daily_logs_user_date"`

	TotalWater    int `gorm:"default:0"` // ml
	TotalProtein  int `gorm:"default:0"` // g
	TotalCalories int `gorm:"default:0"` // kcal

	WaterGoal   int
	ProteinGoal int
	CalorieGoal int

	Entries []IntakeEntry `gorm:"foreignKey:DailyLogID"`
}

// IntakeEntry 表示单次摄入记录，追加后不可修改
type IntakeEntry struct {
	gorm.Model
	DailyLogID uint   `gorm:"index;not null"`
	Type       string `gorm:"size:10;not null"`
	Amount     int    `gorm:"not null"`
	EntryTime  string `gorm:"size:5"`
	Note       string `gorm:"type:text"`
}

// GoalsMet 判断该日志是否三项目标全部达成。
// 目标为 0 视为达成（未配置目标不应阻断连续天数）。
func (l *DailyLog) GoalsMet() bool {
	return l.TotalWater >= l.WaterGoal &&
		l.TotalProtein >= l.ProteinGoal &&
		l.TotalCalories >= l.CalorieGoal
}

// TotalFor 返回指定类别的当日累计。
func (l *DailyLog) TotalFor(intakeType string) int {
	switch intakeType {
	case IntakeWater:
		return l.TotalWater
	case IntakeProtein:
		return l.TotalProtein
	case IntakeCalories:
		return l.TotalCalories
	}
	return 0
}

// FormatDate 将时间归一化为日志主键使用的日历日期。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
