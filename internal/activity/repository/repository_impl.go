package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/streakline/internal/activity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *domain.Activity) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO streak_activities (id, user_id, subject, date, activity_type, outcome, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.UserID,
		a.Subject,
		a.Date,
		a.ActivityType,
		a.Outcome,
		a.Metadata,
		a.CreatedAt,
	).Error
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Activity, error) {
	var (
		clauses = []string{"user_id = ?"}
		args    = []any{filter.UserID}
	)
	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		clauses = append(clauses, "subject = ?")
		args = append(args, subject)
	}
	if filter.BeforeID != 0 {
		clauses = append(clauses, "id < ?")
		args = append(args, filter.BeforeID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)

	var items []*domain.Activity
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, subject, date, activity_type, outcome, metadata, created_at
		 FROM streak_activities
		 WHERE `+strings.Join(clauses, " AND ")+`
		 ORDER BY id DESC
		 LIMIT ?`,
		args...,
	).Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return items, nil
}
