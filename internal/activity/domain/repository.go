package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, activity *Activity) error
	// List returns entries newest first.
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Activity, error)
}
