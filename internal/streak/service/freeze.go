package service

import (
	"context"

	activitydomain "github.com/smallbiznis/streakline/internal/activity/domain"
	obslogger "github.com/smallbiznis/streakline/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streakline/internal/observability/metrics"
	"github.com/smallbiznis/streakline/internal/streak/decision"
	"github.com/smallbiznis/streakline/internal/streak/domain"
	"github.com/smallbiznis/streakline/pkg/log/ctxlogger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UseFreeze spends one freeze on the aggregate streak to cover today. Every
// refusal is reported in the result, not as an error.
func (s *Service) UseFreeze(ctx context.Context, userID, timezone string) (*domain.UseFreezeResult, error) {
	userID, err := normalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	policy, _ := s.decisionPolicy()
	id := domain.RecordID(userID, policy.AggregateSubject)
	ctx = ctxlogger.ContextWithStreakID(ctx, id)

	var out *domain.UseFreezeResult
	err = s.withRetry(ctx, obsmetrics.StoreOperationUseFreeze, func(ctx context.Context) error {
		release, err := s.lockRecords(ctx, []string{id})
		if err != nil {
			return err
		}
		defer release()

		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			record, err := s.repo.FindByID(ctx, tx, id, true)
			if err != nil {
				return err
			}

			stored := ""
			if record != nil {
				stored = record.Timezone
			}
			tz, err := s.resolveTimezone(timezone, stored)
			if err != nil {
				return err
			}
			today, err := s.resolver.Today(tz)
			if err != nil {
				return err
			}

			result := decision.ApplyFreeze(record, today)
			if result.Status != decision.FreezeApplied {
				out = &domain.UseFreezeResult{
					Success: false,
					Message: result.Status.Message(),
					Streak:  result.Next,
				}
				return nil
			}

			next := result.Next
			next.Version = record.Version + 1
			next.UpdatedAt = s.clock.Now().UTC()
			if err := s.repo.Update(ctx, tx, next, record.Version); err != nil {
				return err
			}

			_, err = s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
				UserID:       userID,
				Subject:      next.Subject,
				Date:         today,
				ActivityType: string(domain.ActivityTypeFreeze),
				Outcome:      string(domain.OutcomeFreezeUsed),
				Metadata: map[string]any{
					"timezone":    tz,
					"freeze_days": next.FreezeDays,
				},
			})
			if err != nil {
				return err
			}

			out = &domain.UseFreezeResult{
				Success: true,
				Message: result.Status.Message(),
				Streak:  next,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if out.Success {
		s.metrics.RecordFreezeConsumed(ctx, subjectKind(policy, policy.AggregateSubject), "manual")
		obslogger.WithContext(ctx, s.log).Info("freeze used",
			zap.Int("freeze_days", out.Streak.FreezeDays),
		)
	}
	return out, nil
}
