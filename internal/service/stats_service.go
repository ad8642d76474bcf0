package service

import (
	"fmt"
	"time"

	"github.com/sipstreak/internal/db"
	"gorm.io/gorm"
)

// StatsService 汇总区间维度的摄入统计，服务于历史与统计视图。
type StatsService struct {
	db      *gorm.DB
	intakes *IntakeService
}

// NewStatsService 构造 StatsService。
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb, intakes: NewIntakeService(gdb)}
}

// DaySummary 是单日的摄入与达标摘要。
type DaySummary struct {
	Date          string
	TotalWater    int
	TotalProtein  int
	TotalCalories int
	GoalsMet      bool
}

// RangeSummary 汇总一个日期区间的统计。
// 平均值只对有记录的天计算，区间内无记录的日历日不计入分母。
type RangeSummary struct {
	StartDate     string
	EndDate       string
	Days          []DaySummary
	DaysLogged    int
	DaysGoalsMet  int
	AvgWater      float64
	AvgProtein    float64
	AvgCalories   float64
	TotalWater    int64
	TotalProtein  int64
	TotalCalories int64
}

// Summarize 统计 [start, end] 闭区间。
func (s *StatsService) Summarize(userID uint, start, end string) (*RangeSummary, error) {
	if _, err := time.Parse(db.DateLayout, start); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid start date %q", start)}
	}
	if _, err := time.Parse(db.DateLayout, end); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid end date %q", end)}
	}
	if end < start {
		return nil, &ValidationError{Reason: "end date before start date"}
	}

	logs, err := s.intakes.ListLogsBetween(userID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &RangeSummary{StartDate: start, EndDate: end}
	for i := range logs {
		log := logs[i]
		met := log.GoalsMet()

		summary.Days = append(summary.Days, DaySummary{
			Date:          log.LogDate,
			TotalWater:    log.TotalWater,
			TotalProtein:  log.TotalProtein,
			TotalCalories: log.TotalCalories,
			GoalsMet:      met,
		})

		summary.TotalWater += int64(log.TotalWater)
		summary.TotalProtein += int64(log.TotalProtein)
		summary.TotalCalories += int64(log.TotalCalories)
		if met {
			summary.DaysGoalsMet++
		}
	}

	summary.DaysLogged = len(summary.Days)
	if summary.DaysLogged > 0 {
		n := float64(summary.DaysLogged)
		summary.AvgWater = float64(summary.TotalWater) / n
		summary.AvgProtein = float64(summary.TotalProtein) / n
		summary.AvgCalories = float64(summary.TotalCalories) / n
	}

	return summary, nil
}

// LastWeek 统计截至 now 的最近 7 天。
func (s *StatsService) LastWeek(userID uint, now time.Time) (*RangeSummary, error) {
	start := db.FormatDate(now.AddDate(0, 0, -6))
	return s.Summarize(userID, start, db.FormatDate(now))
}
