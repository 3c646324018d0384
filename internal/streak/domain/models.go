package domain

import (
	"strings"
	"time"

	"github.com/smallbiznis/streakline/internal/clock"
)

// StreakRecord is the persisted streak state for one user and subject.
type StreakRecord struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:text"`
	UserID             string     `json:"user_id" gorm:"type:text;not null;uniqueIndex:streak_records_user_subject_key,priority:1"`
	Subject            string     `json:"subject" gorm:"type:text;not null;uniqueIndex:streak_records_user_subject_key,priority:2"`
	CurrentStreak      int        `json:"current_streak" gorm:"not null;default:0"`
	LongestStreak      int        `json:"longest_streak" gorm:"not null;default:0"`
	LastActivityDate   clock.Date `json:"last_activity_date" gorm:"type:text;not null"`
	FreezeDays         int        `json:"freeze_days" gorm:"not null;default:0"`
	FreezeDaysUsed     int        `json:"freeze_days_used" gorm:"not null;default:0"`
	Timezone           string     `json:"timezone" gorm:"type:text;not null"`
	StreakStartDate    clock.Date `json:"streak_start_date" gorm:"type:text;not null"`
	LastFreezeEarnedAt int        `json:"last_freeze_earned_at" gorm:"not null;default:0"`
	LastFreezeUsedDate clock.Date `json:"last_freeze_used_date,omitempty" gorm:"type:text"`
	Version            int64      `json:"version" gorm:"not null;default:1"`
	CreatedAt          time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (StreakRecord) TableName() string { return "streak_records" }

// Clone returns a copy safe to mutate.
func (r *StreakRecord) Clone() *StreakRecord {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// RecordID builds the composite key of a streak record.
func RecordID(userID, subject string) string {
	return strings.ToLower(strings.TrimSpace(userID)) + "-" + subject
}

type ActivityType string

const (
	ActivityTypeQuizSubmit ActivityType = "quiz_submit"
	ActivityTypeLogin      ActivityType = "login"
	// ActivityTypeFreeze marks an explicit freeze in the activity log. It is
	// never accepted from callers.
	ActivityTypeFreeze ActivityType = "freeze"
)

// Outcome describes what a single decision did to a record.
type Outcome string

const (
	OutcomeStarted    Outcome = "started"
	OutcomeContinued  Outcome = "continued"
	OutcomeBridged    Outcome = "bridged"
	OutcomeReset      Outcome = "reset"
	OutcomeRepeat     Outcome = "repeat"
	OutcomeFreezeUsed Outcome = "freeze_used"
)
