package db

import (
	"gorm.io/gorm"
)

// 活动水平枚举，乘数参与推荐热量目标的计算
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// ActivityMultipliers 将活动水平映射到基础代谢乘数。
var ActivityMultipliers = map[string]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// 注册时写入的默认每日目标
const (
	DefaultWaterGoal   = 2000 // ml
	DefaultProteinGoal = 100  // g
	DefaultCalorieGoal = 2000 // kcal
)

// User 定义了用户模型
// 每日目标与累计摄入量由服务层维护，累计值只增不减
// CurrentStreak/LongestStreak 由连续达标评估更新，LongestStreak 始终 >= CurrentStreak
type User struct {
	gorm.Model
	UserUID       string `gorm:"size:36;uniqueIndex;not null"`
	Email         string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash  string `gorm:"not null"`
	DisplayName   string `gorm:"size:50"`
	Weight        float64
	ActivityLevel string `gorm:"size:20;default:moderate"`

	WaterGoal   int `gorm:"default:2000"`
	ProteinGoal int `gorm:"default:100"`
	CalorieGoal int `gorm:"default:2000"`

	CurrentStreak int `gorm:"default:0"`
	LongestStreak int `gorm:"default:0"`
	// LastStreakDate 记录 CurrentStreak 已计入的最后一个日历日，
	// 用于保证同一天内重复评估不重复累加
	LastStreakDate string `gorm:"size:10"`

	TotalWaterConsumed    int64 `gorm:"default:0"`
	TotalProteinConsumed  int64 `gorm:"default:0"`
	TotalCaloriesConsumed int64 `gorm:"default:0"`

	ReminderEnabled  bool   `gorm:"default:true"`
	ReminderInterval int    `gorm:"default:120"` // 分钟
	ReminderStart    string `gorm:"size:5;default:'08:00'"`
	ReminderEnd      string `gorm:"size:5;default:'22:00'"`
}
