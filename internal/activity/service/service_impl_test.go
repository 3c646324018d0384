package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/streakline/internal/activity/domain"
	"github.com/smallbiznis/streakline/internal/activity/repository"
	"github.com/smallbiznis/streakline/internal/clock"
	obscontext "github.com/smallbiznis/streakline/internal/observability/context"
	"github.com/smallbiznis/streakline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupActivityService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	conn := testutil.NewSQLiteDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: testutil.MustNode(t),
		Clock: fc,
		Repo:  repository.Provide(),
	})
	return svc, conn, fc
}

func TestAppendStoresEntryWithRequestID(t *testing.T) {
	svc, conn, _ := setupActivityService(t)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")

	entry, err := svc.Append(ctx, nil, domain.AppendRequest{
		UserID:       "alice",
		Subject:      "overall",
		Date:         "2026-01-14",
		ActivityType: "login",
		Outcome:      "started",
		Metadata:     map[string]any{"timezone": "UTC"},
	})
	require.NoError(t, err)
	require.NotZero(t, entry.ID)

	var count int64
	require.NoError(t, conn.Raw(`SELECT COUNT(*) FROM streak_activities WHERE user_id = ?`, "alice").Scan(&count).Error)
	assert.Equal(t, int64(1), count)

	resp, err := svc.List(context.Background(), domain.ListActivitiesRequest{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, resp.Activities, 1)
	assert.Equal(t, "req-1", resp.Activities[0].Metadata["request_id"])
	assert.Equal(t, "UTC", resp.Activities[0].Metadata["timezone"])
	assert.Equal(t, clock.Date("2026-01-14"), resp.Activities[0].Date)
}

func TestAppendRejectsIncompleteEntries(t *testing.T) {
	svc, _, _ := setupActivityService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, nil, domain.AppendRequest{Subject: "overall", Date: "2026-01-14", ActivityType: "login", Outcome: "started"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = svc.Append(ctx, nil, domain.AppendRequest{UserID: "alice", Subject: "overall", ActivityType: "login", Outcome: "started"})
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)
}

func TestAppendJoinsCallerTransaction(t *testing.T) {
	svc, conn, _ := setupActivityService(t)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.Append(ctx, tx, domain.AppendRequest{
			UserID: "alice", Subject: "overall", Date: "2026-01-14", ActivityType: "login", Outcome: "started",
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, conn.Raw(`SELECT COUNT(*) FROM streak_activities`).Scan(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, _, fc := setupActivityService(t)
	ctx := context.Background()

	subjects := []string{"overall", "biology", "overall", "chemistry", "overall"}
	for _, subject := range subjects {
		_, err := svc.Append(ctx, nil, domain.AppendRequest{
			UserID: "alice", Subject: subject, Date: "2026-01-14", ActivityType: "quiz_submit", Outcome: "repeat",
		})
		require.NoError(t, err)
		fc.Advance(time.Minute)
	}

	req := domain.ListActivitiesRequest{UserID: "Alice"}
	req.PageSize = 2

	first, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Activities, 2)
	assert.True(t, first.HasMore)
	assert.Greater(t, first.Activities[0].ID, first.Activities[1].ID)

	req.PageToken = first.NextPageToken
	second, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, second.Activities, 2)
	assert.Less(t, second.Activities[0].ID, first.Activities[1].ID)

	req.PageToken = second.NextPageToken
	third, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, third.Activities, 1)
	assert.False(t, third.HasMore)

	onlyOverall, err := svc.List(ctx, domain.ListActivitiesRequest{UserID: "alice", Subject: "overall"})
	require.NoError(t, err)
	assert.Len(t, onlyOverall.Activities, 3)

	req.PageToken = "not-a-token"
	_, err = svc.List(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
