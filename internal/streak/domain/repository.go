package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

type Repository interface {
	// FindByID returns nil, nil when no record exists. forUpdate takes a row
	// lock on engines that support it.
	FindByID(ctx context.Context, db *gorm.DB, id string, forUpdate bool) (*StreakRecord, error)
	Insert(ctx context.Context, db *gorm.DB, record *StreakRecord) error
	// Update persists record only if the stored version still equals
	// expectedVersion, returning ErrConflict otherwise.
	Update(ctx context.Context, db *gorm.DB, record *StreakRecord, expectedVersion int64) error
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]*StreakRecord, error)
	UpdateTimezone(ctx context.Context, db *gorm.DB, userID, timezone string, now time.Time) (int64, error)
}
