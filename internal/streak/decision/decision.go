// Package decision computes streak state transitions. Every function here is
// pure: it reads its inputs, returns a new record and never fails.
package decision

import (
	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/internal/streak/domain"
)

// Policy holds the rules a decision is made under.
type Policy struct {
	AggregateSubject string
	FreezeInterval   int
	MaxFreezes       int
}

func DefaultPolicy() Policy {
	return Policy{
		AggregateSubject: "overall",
		FreezeInterval:   5,
		MaxFreezes:       2,
	}
}

func (p Policy) IsAggregate(subject string) bool {
	return subject == p.AggregateSubject
}

// Input is one qualifying activity already resolved to a calendar day.
type Input struct {
	UserID   string
	Subject  string
	Today    clock.Date
	Timezone string
}

type Result struct {
	Next           *domain.StreakRecord
	Outcome        domain.Outcome
	Changed        bool
	FreezeEarned   bool
	FreezeConsumed bool
	// Gap is the number of calendar days since the previous activity.
	Gap int
}

// unknownGap stands in for a stored date that cannot be parsed. Such a
// record is treated as long lost.
const unknownGap = 1 << 30

// Decide applies one activity to previous. A nil previous starts a new
// streak. A repeat on the same day, or an activity dated before the stored
// day, leaves the record untouched and reports Changed=false.
//
// A call that consumes a freeze never grants one in the same call, even if
// the bridged streak lands on a grant milestone. The grant is picked up by
// the next continuing activity instead.
func Decide(previous *domain.StreakRecord, in Input, policy Policy) Result {
	if previous == nil {
		return Result{
			Next:    start(in),
			Outcome: domain.OutcomeStarted,
			Changed: true,
		}
	}

	if previous.LastActivityDate == in.Today {
		return Result{Next: previous.Clone(), Outcome: domain.OutcomeRepeat}
	}

	gap := dayGap(in.Today, previous.LastActivityDate)
	if gap < 0 {
		return Result{Next: previous.Clone(), Outcome: domain.OutcomeRepeat, Gap: gap}
	}

	next := previous.Clone()
	aggregate := policy.IsAggregate(in.Subject)
	res := Result{Next: next, Changed: true, Gap: gap}

	switch {
	case gap == 1:
		next.CurrentStreak++
		res.Outcome = domain.OutcomeContinued
	case aggregate && gap == 2 && previous.FreezeDays > 0:
		next.CurrentStreak++
		next.FreezeDays--
		next.FreezeDaysUsed++
		next.LastFreezeUsedDate = in.Today
		res.Outcome = domain.OutcomeBridged
		res.FreezeConsumed = true
	default:
		next.CurrentStreak = 1
		next.StreakStartDate = in.Today
		next.FreezeDays = 0
		next.LastFreezeEarnedAt = 0
		res.Outcome = domain.OutcomeReset
	}

	next.LastActivityDate = in.Today
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	if aggregate && !res.FreezeConsumed && earnsFreeze(next, policy) {
		next.FreezeDays++
		next.LastFreezeEarnedAt = next.CurrentStreak
		res.FreezeEarned = true
	}

	next.Timezone = in.Timezone
	return res
}

func start(in Input) *domain.StreakRecord {
	return &domain.StreakRecord{
		ID:               domain.RecordID(in.UserID, in.Subject),
		UserID:           in.UserID,
		Subject:          in.Subject,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastActivityDate: in.Today,
		StreakStartDate:  in.Today,
		Timezone:         in.Timezone,
	}
}

func earnsFreeze(next *domain.StreakRecord, policy Policy) bool {
	if policy.FreezeInterval <= 0 {
		return false
	}
	return next.CurrentStreak-next.LastFreezeEarnedAt >= policy.FreezeInterval &&
		next.FreezeDays < policy.MaxFreezes
}

func dayGap(today, last clock.Date) int {
	gap, err := clock.DaysBetween(today, last)
	if err != nil {
		return unknownGap
	}
	return gap
}
