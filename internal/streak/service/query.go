package service

import (
	"context"
	"strings"

	obslogger "github.com/smallbiznis/streakline/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streakline/internal/observability/metrics"
	"github.com/smallbiznis/streakline/internal/streak/decision"
	"github.com/smallbiznis/streakline/internal/streak/domain"
	"go.uber.org/zap"
)

// GetStreakStatus reports the aggregate streak as seen today. A lost streak
// reads as zero without touching storage.
func (s *Service) GetStreakStatus(ctx context.Context, userID, timezone string) (*domain.StreakStatus, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	policy, _ := s.decisionPolicy()

	record, err := s.repo.FindByID(ctx, s.db, domain.RecordID(userID, policy.AggregateSubject), false)
	if err != nil {
		return nil, err
	}

	stored := ""
	if record != nil {
		stored = record.Timezone
	}
	tz, err := s.resolveTimezone(timezone, stored)
	if err != nil {
		return nil, err
	}

	status := &domain.StreakStatus{
		MaxFreezes: policy.MaxFreezes,
		Timezone:   tz,
	}
	if record == nil {
		return status, nil
	}

	today, err := s.resolver.Today(tz)
	if err != nil {
		return nil, err
	}
	standing := decision.Assess(record, today, policy)

	status.CurrentStreak = standing.EffectiveStreak
	status.LongestStreak = record.LongestStreak
	status.FreezeDays = record.FreezeDays
	status.FreezeDaysUsed = record.FreezeDaysUsed
	status.StreakActive = standing.Active
	status.LastActivityDate = record.LastActivityDate
	status.DaysUntilStreakLoss = standing.DaysUntilStreakLoss
	status.FrozeToday = standing.FrozeToday
	return status, nil
}

// ListStreaks returns every streak of a user with decay applied at read time.
func (s *Service) ListStreaks(ctx context.Context, userID, timezone string) ([]domain.StreakView, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	policy, _ := s.decisionPolicy()
	if strings.TrimSpace(timezone) != "" {
		if _, err := s.resolver.Normalize(timezone); err != nil {
			return nil, err
		}
	}

	records, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.StreakView, 0, len(records))
	for _, record := range records {
		tz, err := s.resolveTimezone(timezone, record.Timezone)
		if err != nil {
			return nil, err
		}
		today, err := s.resolver.Today(tz)
		if err != nil {
			return nil, err
		}
		standing := decision.Assess(record, today, policy)
		views = append(views, domain.StreakView{
			Subject:          record.Subject,
			CurrentStreak:    standing.EffectiveStreak,
			LongestStreak:    record.LongestStreak,
			FreezeDays:       record.FreezeDays,
			LastActivityDate: record.LastActivityDate,
			StreakStartDate:  record.StreakStartDate,
			StreakActive:     standing.Active,
		})
	}
	return views, nil
}

// UpdateTimezone rewrites the zone on every record of the user. Stored
// dates are kept; later activity is resolved in the new zone.
func (s *Service) UpdateTimezone(ctx context.Context, userID, timezone string) (*domain.UpdateTimezoneResult, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(timezone) == "" {
		return nil, domain.ErrInvalidTimezone
	}
	tz, err := s.resolver.Normalize(timezone)
	if err != nil {
		return nil, err
	}

	var updated int64
	err = s.withRetry(ctx, obsmetrics.StoreOperationUpdateTimezone, func(ctx context.Context) error {
		n, err := s.repo.UpdateTimezone(ctx, s.db, userID, tz, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	obslogger.WithContext(ctx, s.log).Info("streak timezone updated",
		zap.String("timezone", tz),
		zap.Int64("updated", updated),
	)
	return &domain.UpdateTimezoneResult{Timezone: tz, Updated: updated}, nil
}
