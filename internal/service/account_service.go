package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sipstreak/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken 在邮箱已被注册时返回
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 在邮箱或密码不匹配时返回
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// 资料编辑的边界约束
const (
	MinDisplayNameLen = 2
	MaxDisplayNameLen = 50

	MinWeight = 30.0
	MaxWeight = 300.0

	MinWaterGoal   = 500
	MaxWaterGoal   = 5000
	MinProteinGoal = 20
	MaxProteinGoal = 300
	MinCalorieGoal = 1000
	MaxCalorieGoal = 5000
)

// AccountService 负责注册、登录校验与资料维护。
type AccountService struct {
	db *gorm.DB
}

// NewAccountService 构造 AccountService。
func NewAccountService(gdb *gorm.DB) *AccountService {
	return &AccountService{db: gdb}
}

// Register 创建新账号：bcrypt 哈希口令，目标采用默认值。
func (s *AccountService) Register(email, password, displayName string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Reason: "a valid email is required"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Reason: "password must be at least 6 characters"}
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}

	var existing db.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		UserUID:       uuid.NewString(),
		Email:         email,
		PasswordHash:  string(hashed),
		DisplayName:   displayName,
		ActivityLevel: db.ActivityModerate,
		WaterGoal:     db.DefaultWaterGoal,
		ProteinGoal:   db.DefaultProteinGoal,
		CalorieGoal:   db.DefaultCalorieGoal,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// Authenticate 校验邮箱口令，成功返回用户。
func (s *AccountService) Authenticate(email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user db.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// Get 按内部 ID 获取用户。
func (s *AccountService) Get(userID uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ProfileInput 定义资料编辑时可配置字段。
type ProfileInput struct {
	DisplayName   string
	Weight        float64
	ActivityLevel string

	WaterGoal   int
	ProteinGoal int
	CalorieGoal int

	ReminderEnabled  bool
	ReminderInterval int
	ReminderStart    string
	ReminderEnd      string
}

// UpdateProfile 校验并保存资料修改。
// 目标修改只影响此后新建的日志快照，历史日志不回溯。
func (s *AccountService) UpdateProfile(userID uint, input ProfileInput) (*db.User, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	var user db.User

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		user.DisplayName = strings.TrimSpace(input.DisplayName)
		user.Weight = input.Weight
		user.ActivityLevel = input.ActivityLevel
		user.WaterGoal = input.WaterGoal
		user.ProteinGoal = input.ProteinGoal
		user.CalorieGoal = input.CalorieGoal
		user.ReminderEnabled = input.ReminderEnabled
		if input.ReminderInterval > 0 {
			user.ReminderInterval = input.ReminderInterval
		}
		if input.ReminderStart != "" {
			user.ReminderStart = input.ReminderStart
		}
		if input.ReminderEnd != "" {
			user.ReminderEnd = input.ReminderEnd
		}

		return tx.Save(&user).Error
	}); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return &user, nil
}

// RecommendedGoals 按体重与活动水平推算每日目标。
// 热量基于 Mifflin-St Jeor 基础代谢乘以活动系数。
type RecommendedGoals struct {
	WaterGoal   int
	ProteinGoal int
	CalorieGoal int
}

// Recommend 计算推荐目标，体重超出边界时返回校验错误。
func (s *AccountService) Recommend(weight float64, activityLevel string) (RecommendedGoals, error) {
	if weight < MinWeight || weight > MaxWeight {
		return RecommendedGoals{}, &ValidationError{
			Reason: fmt.Sprintf("weight must be between %.0f and %.0f kg", MinWeight, MaxWeight),
		}
	}

	multiplier, ok := db.ActivityMultipliers[activityLevel]
	if !ok {
		return RecommendedGoals{}, &ValidationError{Reason: fmt.Sprintf("unknown activity level %q", activityLevel)}
	}

	bmr := 10*weight + 6.25*170 - 5*30 + 5

	return RecommendedGoals{
		WaterGoal:   int(weight * 35),
		ProteinGoal: int(weight * 1.6),
		CalorieGoal: int(bmr * multiplier),
	}, nil
}

func validateDisplayName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < MinDisplayNameLen {
		return &ValidationError{Reason: fmt.Sprintf("name must be at least %d characters", MinDisplayNameLen)}
	}
	if length > MaxDisplayNameLen {
		return &ValidationError{Reason: fmt.Sprintf("name must be less than %d characters", MaxDisplayNameLen)}
	}
	return nil
}

func validateProfileInput(input ProfileInput) error {
	if err := validateDisplayName(strings.TrimSpace(input.DisplayName)); err != nil {
		return err
	}
	if input.Weight < MinWeight || input.Weight > MaxWeight {
		return &ValidationError{Reason: fmt.Sprintf("weight must be between %.0f and %.0f kg", MinWeight, MaxWeight)}
	}
	if _, ok := db.ActivityMultipliers[input.ActivityLevel]; !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown activity level %q", input.ActivityLevel)}
	}
	if input.WaterGoal < MinWaterGoal || input.WaterGoal > MaxWaterGoal {
		return &ValidationError{Reason: fmt.Sprintf("water goal must be between %d and %d ml", MinWaterGoal, MaxWaterGoal)}
	}
	if input.ProteinGoal < MinProteinGoal || input.ProteinGoal > MaxProteinGoal {
		return &ValidationError{Reason: fmt.Sprintf("protein goal must be between %d and %d g", MinProteinGoal, MaxProteinGoal)}
	}
	if input.CalorieGoal < MinCalorieGoal || input.CalorieGoal > MaxCalorieGoal {
		return &ValidationError{Reason: fmt.Sprintf("calorie goal must be between %d and %d kcal", MinCalorieGoal, MaxCalorieGoal)}
	}
	return nil
}
