package decision

import (
	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/internal/streak/domain"
)

type FreezeStatus string

const (
	FreezeApplied   FreezeStatus = "applied"
	FreezeNoStreak  FreezeStatus = "no_streak"
	FreezeNotAtRisk FreezeStatus = "not_at_risk"
	FreezeNoCredit  FreezeStatus = "no_credit"
	FreezeLost      FreezeStatus = "lost"
	// FreezeDeferred means one day was already missed; the next activity
	// bridges it automatically.
	FreezeDeferred FreezeStatus = "deferred"
)

type FreezeResult struct {
	Next   *domain.StreakRecord
	Status FreezeStatus
}

// ApplyFreeze spends one freeze to cover today on an aggregate record whose
// last activity was yesterday. The streak length is kept as is. Any other
// situation returns the record unchanged with the reason.
func ApplyFreeze(record *domain.StreakRecord, today clock.Date) FreezeResult {
	if record == nil || record.CurrentStreak <= 0 {
		return FreezeResult{Next: record.Clone(), Status: FreezeNoStreak}
	}

	gap := dayGap(today, record.LastActivityDate)
	switch {
	case gap <= 0:
		return FreezeResult{Next: record.Clone(), Status: FreezeNotAtRisk}
	case gap == 2 && record.FreezeDays > 0:
		return FreezeResult{Next: record.Clone(), Status: FreezeDeferred}
	case gap >= 2:
		return FreezeResult{Next: record.Clone(), Status: FreezeLost}
	case record.FreezeDays <= 0:
		return FreezeResult{Next: record.Clone(), Status: FreezeNoCredit}
	}

	next := record.Clone()
	next.FreezeDays--
	next.FreezeDaysUsed++
	next.LastActivityDate = today
	next.LastFreezeUsedDate = today
	return FreezeResult{Next: next, Status: FreezeApplied}
}

func (s FreezeStatus) Message() string {
	switch s {
	case FreezeApplied:
		return domain.MessageFreezeApplied
	case FreezeNotAtRisk:
		return domain.MessageNotAtRisk
	case FreezeNoCredit:
		return domain.MessageNoFreeze
	case FreezeLost:
		return domain.MessageStreakLost
	case FreezeDeferred:
		return domain.MessageBridgedOnReturn
	default:
		return domain.MessageNoStreak
	}
}
