package service

import (
	"errors"
	"testing"

	"github.com/sipstreak/internal/db"
)

func TestValidateAmountRejectsNonPositive(t *testing.T) {
	for _, intakeType := range []string{db.IntakeWater, db.IntakeProtein, db.IntakeCalories} {
		for _, amount := range []int{0, -1, -100} {
			if err := ValidateAmount(intakeType, amount); err == nil {
				t.Fatalf("expected rejection for %s amount %d", intakeType, amount)
			}
		}
	}
}

func TestValidateAmountEntryCeilings(t *testing.T) {
	cases := []struct {
		intakeType string
		ok         int
		tooBig     int
	}{
		{db.IntakeWater, 2000, 2001},
		{db.IntakeProtein, 100, 101},
		{db.IntakeCalories, 1500, 1501},
	}

	for _, tc := range cases {
		if err := ValidateAmount(tc.intakeType, tc.ok); err != nil {
			t.Fatalf("%s amount %d should pass: %v", tc.intakeType, tc.ok, err)
		}
		err := ValidateAmount(tc.intakeType, tc.tooBig)
		if err == nil {
			t.Fatalf("%s amount %d should be rejected", tc.intakeType, tc.tooBig)
		}

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}
}

func TestValidateAmountUnknownType(t *testing.T) {
	if err := ValidateAmount("coffee", 100); err == nil {
		t.Fatal("expected rejection for unknown intake type")
	}
}

func TestCheckDailyLimit(t *testing.T) {
	current := 9900

	// 9900 + 200 = 10100 > 10000 被拒
	if err := CheckDailyLimit(db.IntakeWater, 200, &current); err == nil {
		t.Fatal("expected daily limit rejection")
	}

	// 恰好到达上限允许
	if err := CheckDailyLimit(db.IntakeWater, 100, &current); err != nil {
		t.Fatalf("amount reaching the ceiling exactly should pass: %v", err)
	}
}

func TestCheckDailyLimitFailOpen(t *testing.T) {
	// 当前累计不可知时放行
	if err := CheckDailyLimit(db.IntakeWater, 2000, nil); err != nil {
		t.Fatalf("unknown current total should not block: %v", err)
	}
}

func TestValidateIntakeCombined(t *testing.T) {
	current := 400
	if err := ValidateIntake(db.IntakeProtein, 101, &current); err == nil {
		t.Fatal("entry ceiling must apply before daily check")
	}
	if err := ValidateIntake(db.IntakeProtein, 100, &current); err != nil {
		t.Fatalf("100g on top of 400g hits the 500g ceiling exactly: %v", err)
	}
	current = 401
	if err := ValidateIntake(db.IntakeProtein, 100, &current); err == nil {
		t.Fatal("exceeding the 500g daily ceiling must be rejected")
	}
}
