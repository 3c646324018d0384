package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gosimple/slug"
	activitydomain "github.com/smallbiznis/streakline/internal/activity/domain"
	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/internal/config"
	obslogger "github.com/smallbiznis/streakline/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streakline/internal/observability/metrics"
	"github.com/smallbiznis/streakline/internal/ratelimit"
	"github.com/smallbiznis/streakline/internal/streak/decision"
	"github.com/smallbiznis/streakline/internal/streak/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSubjectLength = 64

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Clock        clock.Clock
	Resolver     *clock.Resolver
	Policy       *config.PolicyHolder
	Repo         domain.Repository
	ActivitySvc  activitydomain.Service
	Metrics      *obsmetrics.Metrics      `optional:"true"`
	StoreMetrics *obsmetrics.StoreMetrics `optional:"true"`
	Limiter      *ratelimit.ActivityLimiter `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock        clock.Clock
	resolver     *clock.Resolver
	policy       *config.PolicyHolder
	repo         domain.Repository
	activitySvc  activitydomain.Service
	metrics      *obsmetrics.Metrics
	storeMetrics *obsmetrics.StoreMetrics
	limiter      *ratelimit.ActivityLimiter
	retry        config.RetryConfig
}

func NewService(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("streak.service"),

		clock:        p.Clock,
		resolver:     p.Resolver,
		policy:       p.Policy,
		repo:         p.Repo,
		activitySvc:  p.ActivitySvc,
		metrics:      p.Metrics,
		storeMetrics: p.StoreMetrics,
		limiter:      p.Limiter,
		retry:        p.Cfg.Retry,
	}
}

func (s *Service) decisionPolicy() (decision.Policy, config.StreakPolicy) {
	cfg := s.policy.Get()
	return decision.Policy{
		AggregateSubject: cfg.AggregateSubject,
		FreezeInterval:   cfg.FreezeInterval,
		MaxFreezes:       cfg.MaxFreezes,
	}, cfg
}

func normalizeUserID(userID string) (string, error) {
	userID = strings.ToLower(strings.TrimSpace(userID))
	if userID == "" {
		return "", domain.ErrInvalidUser
	}
	return userID, nil
}

// normalizeSubject slugs subject; empty maps to the aggregate subject.
func normalizeSubject(subject, aggregate string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return aggregate, nil
	}
	normalized := slug.Make(subject)
	if normalized == "" || len(normalized) > maxSubjectLength {
		return "", domain.ErrInvalidSubject
	}
	return normalized, nil
}

// resolveTimezone picks the requested zone, then the stored one, then the
// configured default.
func (s *Service) resolveTimezone(requested, stored string) (string, error) {
	if strings.TrimSpace(requested) != "" {
		return s.resolver.Normalize(requested)
	}
	if strings.TrimSpace(stored) != "" {
		if tz, err := s.resolver.Normalize(stored); err == nil {
			return tz, nil
		}
	}
	return s.resolver.Normalize("")
}

func subjectKind(policy decision.Policy, subject string) string {
	if policy.IsAggregate(subject) {
		return "aggregate"
	}
	return "subject"
}

// withRetry runs fn until it commits, fails permanently, or exhausts the
// configured attempts. Store contention surfaces as domain.ErrConflict.
func (s *Service) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	maxTries := s.retry.MaxAttempts
	if maxTries == 0 {
		maxTries = 1
	}

	b := backoff.NewExponentialBackOff()
	if s.retry.InitialDelay > 0 {
		b.InitialInterval = s.retry.InitialDelay
	}
	if s.retry.MaxDelay > 0 {
		b.MaxInterval = s.retry.MaxDelay
	}

	log := obslogger.WithContext(ctx, s.log)
	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		started := time.Now()
		err := fn(ctx)
		s.storeMetrics.ObserveTx(operation, started, err)
		if err == nil {
			return struct{}{}, nil
		}
		if !obsmetrics.IsStoreConflict(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		reason := obsmetrics.ClassifyStoreReason(err)
		s.metrics.RecordConflictRetry(ctx, reason)
		log.Debug("streak write conflict",
			zap.String("operation", operation),
			zap.Int("attempt", attempts),
			zap.String("reason", reason),
		)
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxTries),
	)
	s.storeMetrics.ObserveAttempts(operation, attempts)

	if err != nil && obsmetrics.IsStoreConflict(err) {
		log.Warn("streak write gave up after retries",
			zap.String("operation", operation),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return domain.ErrConflict
	}
	return err
}

// lockRecords takes the optional distributed locks for ids. A lock held
// elsewhere is reported as a conflict so the write is retried.
func (s *Service) lockRecords(ctx context.Context, ids []string) (func(), error) {
	lease, err := s.limiter.LockStreaks(ctx, ids)
	if errors.Is(err, ratelimit.ErrStreakLocked) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return func() { lease.Release(context.WithoutCancel(ctx)) }, nil
}

func (s *Service) allowActivity(ctx context.Context, userID, endpoint string) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.AllowActivity(ctx, userID)
	if err != nil {
		return err
	}
	if !res.Allowed {
		s.metrics.RecordRateLimitDenied(ctx, endpoint, "user_bucket")
		return domain.ErrRateLimited
	}
	s.metrics.RecordRateLimitAllowed(ctx, endpoint)
	return nil
}
