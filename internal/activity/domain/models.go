package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakline/internal/clock"
	"gorm.io/datatypes"
)

// Activity is one append-only entry of the activity log.
type Activity struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey"`
	UserID       string            `json:"user_id" gorm:"type:text;not null"`
	Subject      string            `json:"subject" gorm:"type:text;not null"`
	Date         clock.Date        `json:"date" gorm:"type:text;not null"`
	ActivityType string            `json:"activity_type" gorm:"type:text;not null"`
	Outcome      string            `json:"outcome" gorm:"type:text;not null"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Activity) TableName() string { return "streak_activities" }

type ListFilter struct {
	UserID   string
	Subject  string
	BeforeID snowflake.ID
	Limit    int
}
