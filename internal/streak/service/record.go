package service

import (
	"context"
	"sort"
	"strings"

	activitydomain "github.com/smallbiznis/streakline/internal/activity/domain"
	obslogger "github.com/smallbiznis/streakline/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streakline/internal/observability/metrics"
	"github.com/smallbiznis/streakline/internal/streak/decision"
	"github.com/smallbiznis/streakline/internal/streak/domain"
	"github.com/smallbiznis/streakline/pkg/log/ctxlogger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) RecordActivity(ctx context.Context, req domain.RecordActivityRequest) (*domain.RecordActivityResult, error) {
	userID, err := normalizeUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	policy, cfg := s.decisionPolicy()

	activityType := strings.TrimSpace(req.ActivityType)
	if activityType == string(domain.ActivityTypeFreeze) || !cfg.AllowsActivity(activityType) {
		return nil, domain.ErrInvalidActivityType
	}

	subject := policy.AggregateSubject
	if domain.ActivityType(activityType) != domain.ActivityTypeLogin {
		subject, err = normalizeSubject(req.Subject, policy.AggregateSubject)
		if err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.Timezone) != "" {
		if _, err := s.resolver.Normalize(req.Timezone); err != nil {
			return nil, err
		}
	}

	if err := s.allowActivity(ctx, userID, "record_activity"); err != nil {
		return nil, err
	}

	results, err := s.apply(ctx, userID, []string{subject}, activityType, req.Timezone, policy)
	if err != nil {
		return nil, err
	}
	return results[subject], nil
}

// RecordQuizSubmission advances the subject streak and the aggregate streak
// in one transaction.
func (s *Service) RecordQuizSubmission(ctx context.Context, req domain.QuizSubmissionRequest) (*domain.QuizSubmissionResult, error) {
	userID, err := normalizeUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	policy, cfg := s.decisionPolicy()
	if !cfg.AllowsActivity(string(domain.ActivityTypeQuizSubmit)) {
		return nil, domain.ErrInvalidActivityType
	}

	subject, err := normalizeSubject(req.Subject, policy.AggregateSubject)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Timezone) != "" {
		if _, err := s.resolver.Normalize(req.Timezone); err != nil {
			return nil, err
		}
	}

	if err := s.allowActivity(ctx, userID, "quiz_submission"); err != nil {
		return nil, err
	}

	subjects := []string{subject}
	if !policy.IsAggregate(subject) {
		subjects = append(subjects, policy.AggregateSubject)
	}

	results, err := s.apply(ctx, userID, subjects, string(domain.ActivityTypeQuizSubmit), req.Timezone, policy)
	if err != nil {
		return nil, err
	}

	out := &domain.QuizSubmissionResult{Overall: results[policy.AggregateSubject]}
	if !policy.IsAggregate(subject) {
		out.Subject = results[subject]
	}
	return out, nil
}

// apply runs the load-decide-persist cycle for every subject of one
// activity event inside a single transaction, retrying on contention.
func (s *Service) apply(
	ctx context.Context,
	userID string,
	subjects []string,
	activityType string,
	requestedTZ string,
	policy decision.Policy,
) (map[string]*domain.RecordActivityResult, error) {
	ids := make([]string, 0, len(subjects))
	subjectByID := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		id := domain.RecordID(userID, subject)
		ids = append(ids, id)
		subjectByID[id] = subject
	}
	sort.Strings(ids)
	ctx = ctxlogger.ContextWithStreakID(ctx, strings.Join(ids, ","))

	var results map[string]*domain.RecordActivityResult
	err := s.withRetry(ctx, obsmetrics.StoreOperationRecordActivity, func(ctx context.Context) error {
		release, err := s.lockRecords(ctx, ids)
		if err != nil {
			return err
		}
		defer release()

		attempt := make(map[string]*domain.RecordActivityResult, len(ids))
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, id := range ids {
				res, err := s.applyOne(ctx, tx, userID, subjectByID[id], activityType, requestedTZ, policy)
				if err != nil {
					return err
				}
				attempt[subjectByID[id]] = res
			}
			return nil
		})
		if err != nil {
			return err
		}
		results = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, subject := range subjects {
		s.observe(ctx, policy, activityType, results[subject])
	}
	return results, nil
}

func (s *Service) applyOne(
	ctx context.Context,
	tx *gorm.DB,
	userID, subject, activityType, requestedTZ string,
	policy decision.Policy,
) (*domain.RecordActivityResult, error) {
	id := domain.RecordID(userID, subject)
	previous, err := s.repo.FindByID(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	stored := ""
	if previous != nil {
		stored = previous.Timezone
	}
	tz, err := s.resolveTimezone(requestedTZ, stored)
	if err != nil {
		return nil, err
	}
	today, err := s.resolver.Today(tz)
	if err != nil {
		return nil, err
	}

	result := decision.Decide(previous, decision.Input{
		UserID:   userID,
		Subject:  subject,
		Today:    today,
		Timezone: tz,
	}, policy)

	next := result.Next
	if result.Changed {
		now := s.clock.Now().UTC()
		next.UpdatedAt = now
		if previous == nil {
			next.Version = 1
			next.CreatedAt = now
			if err := s.repo.Insert(ctx, tx, next); err != nil {
				return nil, err
			}
		} else {
			next.Version = previous.Version + 1
			if err := s.repo.Update(ctx, tx, next, previous.Version); err != nil {
				return nil, err
			}
		}
	}

	_, err = s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
		UserID:       userID,
		Subject:      subject,
		Date:         today,
		ActivityType: activityType,
		Outcome:      string(result.Outcome),
		Metadata: map[string]any{
			"timezone":       tz,
			"current_streak": next.CurrentStreak,
			"gap":            result.Gap,
		},
	})
	if err != nil {
		return nil, err
	}

	return &domain.RecordActivityResult{
		Streak:         next,
		FreezeEarned:   result.FreezeEarned,
		FreezeConsumed: result.FreezeConsumed,
		Outcome:        result.Outcome,
	}, nil
}

func (s *Service) observe(ctx context.Context, policy decision.Policy, activityType string, res *domain.RecordActivityResult) {
	if res == nil || res.Streak == nil {
		return
	}
	kind := subjectKind(policy, res.Streak.Subject)
	s.metrics.RecordActivity(ctx, activityType, string(res.Outcome), kind, res.Streak.CurrentStreak)
	if res.FreezeEarned {
		s.metrics.RecordFreezeEarned(ctx, kind)
	}
	if res.FreezeConsumed {
		s.metrics.RecordFreezeConsumed(ctx, kind, "bridge")
	}
	if res.Outcome == domain.OutcomeReset {
		s.metrics.RecordStreakReset(ctx, kind)
	}

	obslogger.WithContext(ctx, s.log).Debug("streak activity recorded",
		zap.String("subject", res.Streak.Subject),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("current_streak", res.Streak.CurrentStreak),
		zap.Bool("freeze_earned", res.FreezeEarned),
		zap.Bool("freeze_consumed", res.FreezeConsumed),
	)
}
