package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/streakline/internal/streak/domain"
	"github.com/smallbiznis/streakline/pkg/db"
	"gorm.io/gorm"
)

const recordColumns = `id, user_id, subject, current_streak, longest_streak, last_activity_date,
		 freeze_days, freeze_days_used, timezone, streak_start_date, last_freeze_earned_at,
		 COALESCE(last_freeze_used_date, '') AS last_freeze_used_date, version, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id string, forUpdate bool) (*domain.StreakRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM streak_records WHERE id = ?`
	if forUpdate && db.SupportsRowLocks(conn) {
		query += ` FOR UPDATE`
	}

	var record domain.StreakRecord
	if err := conn.WithContext(ctx).Raw(query, id).Scan(&record).Error; err != nil {
		return nil, fmt.Errorf("load streak record: %w", err)
	}
	if record.ID == "" {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, record *domain.StreakRecord) error {
	err := conn.WithContext(ctx).Exec(
		`INSERT INTO streak_records (id, user_id, subject, current_streak, longest_streak, last_activity_date,
		 freeze_days, freeze_days_used, timezone, streak_start_date, last_freeze_earned_at,
		 last_freeze_used_date, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.Subject,
		record.CurrentStreak,
		record.LongestStreak,
		record.LastActivityDate,
		record.FreezeDays,
		record.FreezeDaysUsed,
		record.Timezone,
		record.StreakStartDate,
		record.LastFreezeEarnedAt,
		record.LastFreezeUsedDate,
		record.Version,
		record.CreatedAt,
		record.UpdatedAt,
	).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert streak record: %w", err)
	}
	return nil
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, record *domain.StreakRecord, expectedVersion int64) error {
	res := conn.WithContext(ctx).Exec(
		`UPDATE streak_records
		 SET current_streak = ?,
		     longest_streak = ?,
		     last_activity_date = ?,
		     freeze_days = ?,
		     freeze_days_used = ?,
		     timezone = ?,
		     streak_start_date = ?,
		     last_freeze_earned_at = ?,
		     last_freeze_used_date = NULLIF(?, ''),
		     version = ?,
		     updated_at = ?
		 WHERE id = ? AND version = ?`,
		record.CurrentStreak,
		record.LongestStreak,
		record.LastActivityDate,
		record.FreezeDays,
		record.FreezeDaysUsed,
		record.Timezone,
		record.StreakStartDate,
		record.LastFreezeEarnedAt,
		record.LastFreezeUsedDate,
		record.Version,
		record.UpdatedAt,
		record.ID,
		expectedVersion,
	)
	if res.Error != nil {
		return fmt.Errorf("update streak record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *repo) ListByUser(ctx context.Context, conn *gorm.DB, userID string) ([]*domain.StreakRecord, error) {
	var records []*domain.StreakRecord
	err := conn.WithContext(ctx).Raw(
		`SELECT `+recordColumns+`
		 FROM streak_records
		 WHERE user_id = ?
		 ORDER BY subject ASC`,
		userID,
	).Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list streak records: %w", err)
	}
	return records, nil
}

func (r *repo) UpdateTimezone(ctx context.Context, conn *gorm.DB, userID, timezone string, now time.Time) (int64, error) {
	res := conn.WithContext(ctx).Exec(
		`UPDATE streak_records
		 SET timezone = ?, version = version + 1, updated_at = ?
		 WHERE user_id = ?`,
		timezone,
		now,
		userID,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("update streak timezone: %w", res.Error)
	}
	return res.RowsAffected, nil
}
