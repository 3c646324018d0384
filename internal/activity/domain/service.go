package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	// Append writes one entry using tx when given so it commits together
	// with the streak record change.
	Append(ctx context.Context, tx *gorm.DB, req AppendRequest) (*Activity, error)
	List(ctx context.Context, req ListActivitiesRequest) (*ListActivitiesResponse, error)
}

type AppendRequest struct {
	UserID       string
	Subject      string
	Date         clock.Date
	ActivityType string
	Outcome      string
	Metadata     map[string]any
}

type ListActivitiesRequest struct {
	pagination.Pagination
	UserID  string `form:"-"`
	Subject string `form:"subject"`
}

type ListActivitiesResponse struct {
	pagination.PageInfo
	Activities []Activity `json:"activities"`
}

var (
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidEntry     = errors.New("invalid_activity")
	ErrInvalidPageToken = pagination.ErrInvalidPageToken
)
