package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/streakline/internal/clock"
)

type Service interface {
	RecordActivity(ctx context.Context, req RecordActivityRequest) (*RecordActivityResult, error)
	RecordQuizSubmission(ctx context.Context, req QuizSubmissionRequest) (*QuizSubmissionResult, error)
	GetStreakStatus(ctx context.Context, userID, timezone string) (*StreakStatus, error)
	UseFreeze(ctx context.Context, userID, timezone string) (*UseFreezeResult, error)
	UpdateTimezone(ctx context.Context, userID, timezone string) (*UpdateTimezoneResult, error)
	ListStreaks(ctx context.Context, userID, timezone string) ([]StreakView, error)
}

type RecordActivityRequest struct {
	UserID       string `json:"-"`
	Subject      string `json:"subject"`
	ActivityType string `json:"activity_type"`
	Timezone     string `json:"timezone"`
}

type RecordActivityResult struct {
	Streak         *StreakRecord `json:"streak"`
	FreezeEarned   bool          `json:"freeze_earned"`
	FreezeConsumed bool          `json:"freeze_consumed"`
	Outcome        Outcome       `json:"outcome"`
}

type QuizSubmissionRequest struct {
	UserID   string `json:"-"`
	Subject  string `json:"subject"`
	Timezone string `json:"timezone"`
}

// QuizSubmissionResult carries both streaks a quiz submission advances.
type QuizSubmissionResult struct {
	Subject *RecordActivityResult `json:"subject"`
	Overall *RecordActivityResult `json:"overall"`
}

type StreakStatus struct {
	CurrentStreak       int        `json:"current_streak"`
	LongestStreak       int        `json:"longest_streak"`
	FreezeDays          int        `json:"freeze_days"`
	FreezeDaysUsed      int        `json:"freeze_days_used"`
	MaxFreezes          int        `json:"max_freezes"`
	StreakActive        bool       `json:"streak_active"`
	LastActivityDate    clock.Date `json:"last_activity_date,omitempty"`
	DaysUntilStreakLoss int        `json:"days_until_streak_loss"`
	FrozeToday          bool       `json:"froze_today"`
	Timezone            string     `json:"timezone"`
}

type UseFreezeResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Streak  *StreakRecord `json:"streak,omitempty"`
}

type UpdateTimezoneResult struct {
	Timezone string `json:"timezone"`
	Updated  int64  `json:"updated"`
}

// StreakView is a read-time projection of a record with decay applied.
type StreakView struct {
	Subject          string     `json:"subject"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	FreezeDays       int        `json:"freeze_days"`
	LastActivityDate clock.Date `json:"last_activity_date"`
	StreakStartDate  clock.Date `json:"streak_start_date"`
	StreakActive     bool       `json:"streak_active"`
}

const (
	MessageFreezeApplied   = "freeze applied, today is covered"
	MessageNoFreeze        = "no freeze days available"
	MessageNotAtRisk       = "streak is not at risk today"
	MessageStreakLost      = "streak already lost, nothing to protect"
	MessageNoStreak        = "no active streak to protect"
	MessageBridgedOnReturn = "missed day will be bridged automatically on your next activity"
)

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidSubject      = errors.New("invalid_subject")
	ErrInvalidActivityType = errors.New("invalid_activity_type")
	ErrInvalidTimezone     = clock.ErrInvalidTimezone
	ErrConflict            = errors.New("conflict")
	ErrRateLimited         = errors.New("rate_limited")
)
