package decision

import (
	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/internal/streak/domain"
)

// Standing is the read-time view of a record on a given day. Records are
// never decayed in storage, so a lost streak is only visible here.
type Standing struct {
	Gap                 int
	Active              bool
	EffectiveStreak     int
	DaysUntilStreakLoss int
	FrozeToday          bool
}

func Assess(record *domain.StreakRecord, today clock.Date, policy Policy) Standing {
	if record == nil || record.LastActivityDate.IsZero() {
		return Standing{}
	}

	gap := dayGap(today, record.LastActivityDate)
	if gap < 0 {
		gap = 0
	}

	s := Standing{
		Gap:        gap,
		Active:     record.CurrentStreak > 0 && gap <= 1,
		FrozeToday: !record.LastFreezeUsedDate.IsZero() && record.LastFreezeUsedDate == today,
	}
	if gap == 0 && record.CurrentStreak > 0 {
		s.DaysUntilStreakLoss = 1
	}

	switch {
	case s.Active:
		s.EffectiveStreak = record.CurrentStreak
	case gap == 2 && policy.IsAggregate(record.Subject) && record.FreezeDays > 0:
		s.EffectiveStreak = record.CurrentStreak
	default:
		s.EffectiveStreak = 0
	}

	return s
}
