package service

import "github.com/sipstreak/internal/db"

// 成就类别
const (
	CategoryStreak        = "streak"
	CategoryTotalWater    = "total_water"
	CategoryTotalProtein  = "total_protein"
	CategoryTotalCalories = "total_calories"
	CategoryConsistency   = "consistency"
)

// Achievement 是成就模板：静态定义的里程碑与阈值。
type Achievement struct {
	AchievementID string
	Title         string
	Description   string
	Icon          string
	Requirement   int64
	Category      string
}

// Unlockable 判断该模板对给定用户是否满足解锁条件。
// consistency 类别的判定标准尚未敲定，在敲定前永不解锁。
func (a Achievement) Unlockable(user *db.User) bool {
	switch a.Category {
	case CategoryStreak:
		return int64(user.CurrentStreak) >= a.Requirement
	case CategoryTotalWater:
		return user.TotalWaterConsumed >= a.Requirement
	case CategoryTotalProtein:
		return user.TotalProteinConsumed >= a.Requirement
	case CategoryTotalCalories:
		return user.TotalCaloriesConsumed >= a.Requirement
	case CategoryConsistency:
		return false
	}
	return false
}

// DefaultCatalog 返回进程级的成就模板目录。
// 返回新切片，调用方无法篡改模板定义。
func DefaultCatalog() []Achievement {
	return []Achievement{
		{
			AchievementID: "streak_7",
			Title:         "Week Warrior",
			Description:   "Achieve a 7-day hydration streak",
			Icon:          "Fire",
			Requirement:   7,
			Category:      CategoryStreak,
		},
		{
			AchievementID: "streak_30",
			Title:         "Monthly Master",
			Description:   "Achieve a 30-day hydration streak",
			Icon:          "Muscle",
			Requirement:   30,
			Category:      CategoryStreak,
		},
		{
			AchievementID: "streak_100",
			Title:         "Century Champion",
			Description:   "Achieve a 100-day hydration streak",
			Icon:          "Crown",
			Requirement:   100,
			Category:      CategoryStreak,
		},
		{
			AchievementID: "water_1000l",
			Title:         "1000L Club",
			Description:   "Drink 1000 liters of water lifetime",
			Icon:          "Water Drop",
			Requirement:   1_000_000, // ml
			Category:      CategoryTotalWater,
		},
		{
			AchievementID: "protein_10kg",
			Title:         "Protein Pro",
			Description:   "Consume 10kg of protein lifetime",
			Icon:          "Meat",
			Requirement:   10_000, // g
			Category:      CategoryTotalProtein,
		},
		{
			AchievementID: "consistency_30",
			Title:         "Consistency King",
			Description:   "Hit all goals for 30 days straight",
			Icon:          "Star",
			Requirement:   30,
			Category:      CategoryConsistency,
		},
	}
}
