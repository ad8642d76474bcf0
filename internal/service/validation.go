package service

import (
	"fmt"

	"github.com/sipstreak/internal/db"
)

// 单次摄入与单日累计的硬性上限
const (
	MinIntakeAmount = 1

	MaxWaterIntake   = 2000 // ml
	MaxProteinIntake = 100  // g
	MaxCalorieIntake = 1500 // kcal

	MaxDailyWater    = 10000 // ml
	MaxDailyProtein  = 500   // g
	MaxDailyCalories = 10000 // kcal
)

// ValidationError 表示摄入请求在写入前被规则拒绝。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidIntakeType 判断类别是否受支持。
func IsValidIntakeType(intakeType string) bool {
	switch intakeType {
	case db.IntakeWater, db.IntakeProtein, db.IntakeCalories:
		return true
	}
	return false
}

func entryCeiling(intakeType string) (limit int, unit string) {
	switch intakeType {
	case db.IntakeWater:
		return MaxWaterIntake, "ml"
	case db.IntakeProtein:
		return MaxProteinIntake, "g"
	case db.IntakeCalories:
		return MaxCalorieIntake, "kcal"
	}
	return 0, ""
}

func dailyCeiling(intakeType string) (limit int, unit string) {
	switch intakeType {
	case db.IntakeWater:
		return MaxDailyWater, "ml"
	case db.IntakeProtein:
		return MaxDailyProtein, "g"
	case db.IntakeCalories:
		return MaxDailyCalories, "kcal"
	}
	return 0, ""
}

// ValidateAmount 校验单次摄入量，纯函数，无任何副作用。
func ValidateAmount(intakeType string, amount int) error {
	if !IsValidIntakeType(intakeType) {
		return &ValidationError{Reason: fmt.Sprintf("unsupported intake type %q", intakeType)}
	}

	if amount < MinIntakeAmount {
		return &ValidationError{Reason: fmt.Sprintf("amount must be at least %d", MinIntakeAmount)}
	}

	limit, unit := entryCeiling(intakeType)
	if amount > limit {
		return &ValidationError{Reason: fmt.Sprintf("single %s intake cannot exceed %d %s", intakeType, limit, unit)}
	}

	return nil
}

// CheckDailyLimit 校验追加后是否突破单日上限。
// currentTotal 为 nil 表示当前累计无法获知，此时放行（宁可记录也不因读取失败阻断），
// 单次上限校验不受此豁免影响。
func CheckDailyLimit(intakeType string, amount int, currentTotal *int) error {
	if currentTotal == nil {
		return nil
	}

	limit, unit := dailyCeiling(intakeType)
	if limit == 0 {
		return nil
	}

	if *currentTotal+amount > limit {
		return &ValidationError{Reason: fmt.Sprintf("daily %s limit (%d %s) would be exceeded", intakeType, limit, unit)}
	}

	return nil
}

// ValidateIntake 依次执行单次与单日校验。
func ValidateIntake(intakeType string, amount int, currentTotal *int) error {
	if err := ValidateAmount(intakeType, amount); err != nil {
		return err
	}
	return CheckDailyLimit(intakeType, amount, currentTotal)
}
