package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakline/internal/activity/domain"
	"github.com/smallbiznis/streakline/internal/clock"
	obscontext "github.com/smallbiznis/streakline/internal/observability/context"
	"github.com/smallbiznis/streakline/pkg/db/pagination"
	"github.com/smallbiznis/streakline/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, tx *gorm.DB, req domain.AppendRequest) (*domain.Activity, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	if strings.TrimSpace(req.Subject) == "" || req.Date.IsZero() ||
		strings.TrimSpace(req.ActivityType) == "" || strings.TrimSpace(req.Outcome) == "" {
		return nil, domain.ErrInvalidEntry
	}

	payload := map[string]any{}
	for key, value := range req.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}
	correlation.Annotate(ctx, payload)

	entry := domain.Activity{
		ID:           s.genID.Generate(),
		UserID:       userID,
		Subject:      req.Subject,
		Date:         req.Date,
		ActivityType: req.ActivityType,
		Outcome:      req.Outcome,
		Metadata:     datatypes.JSONMap(payload),
		CreatedAt:    s.clock.Now().UTC(),
	}

	if tx == nil {
		tx = s.db
	}
	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		s.log.Warn("failed to append activity",
			zap.String("subject", entry.Subject),
			zap.String("activity_type", entry.ActivityType),
			zap.Error(err),
		)
		return nil, err
	}
	return &entry, nil
}

func (s *Service) List(ctx context.Context, req domain.ListActivitiesRequest) (*domain.ListActivitiesResponse, error) {
	userID := strings.ToLower(strings.TrimSpace(req.UserID))
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	var beforeID snowflake.ID
	cursor, err := pagination.DecodeCursor(req.PageToken)
	if err != nil {
		return nil, domain.ErrInvalidPageToken
	}
	if cursor != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidPageToken
		}
		beforeID = id
	}

	limit := req.Limit()
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		UserID:   userID,
		Subject:  strings.TrimSpace(req.Subject),
		BeforeID: beforeID,
		Limit:    limit + 1,
	})
	if err != nil {
		return nil, err
	}

	items, pageInfo, err := pagination.BuildCursorPageInfo(items, limit, func(item *domain.Activity) pagination.Cursor {
		return pagination.Cursor{
			ID:        strconv.FormatInt(item.ID.Int64(), 10),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		}
	})
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		activities = append(activities, *item)
	}

	return &domain.ListActivitiesResponse{
		PageInfo:   *pageInfo,
		Activities: activities,
	}, nil
}
