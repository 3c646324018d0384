package decision

import (
	"testing"

	"github.com/smallbiznis/streakline/internal/clock"
	"github.com/smallbiznis/streakline/internal/streak/domain"
	"github.com/stretchr/testify/assert"
)

func TestApplyFreeze(t *testing.T) {
	cases := []struct {
		name       string
		record     *domain.StreakRecord
		want       FreezeStatus
		wantFreeze int
		wantLast   clock.Date
	}{
		{
			name:   "no record",
			record: nil,
			want:   FreezeNoStreak,
		},
		{
			name:       "active today",
			record:     withFreezes(overallRecord(3, "2026-01-14"), 1),
			want:       FreezeNotAtRisk,
			wantFreeze: 1,
			wantLast:   "2026-01-14",
		},
		{
			name:       "at risk with credit",
			record:     withFreezes(overallRecord(3, "2026-01-13"), 2),
			want:       FreezeApplied,
			wantFreeze: 1,
			wantLast:   "2026-01-14",
		},
		{
			name:       "at risk without credit",
			record:     overallRecord(3, "2026-01-13"),
			want:       FreezeNoCredit,
			wantFreeze: 0,
			wantLast:   "2026-01-13",
		},
		{
			name:       "one day missed with credit",
			record:     withFreezes(overallRecord(3, "2026-01-12"), 1),
			want:       FreezeDeferred,
			wantFreeze: 1,
			wantLast:   "2026-01-12",
		},
		{
			name:       "already lost",
			record:     withFreezes(overallRecord(3, "2026-01-10"), 1),
			want:       FreezeLost,
			wantFreeze: 1,
			wantLast:   "2026-01-10",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ApplyFreeze(tc.record, "2026-01-14")

			assert.Equal(t, tc.want, res.Status)
			assert.NotEmpty(t, res.Status.Message())
			if tc.record == nil {
				assert.Nil(t, res.Next)
				return
			}
			assert.Equal(t, tc.wantFreeze, res.Next.FreezeDays)
			assert.Equal(t, tc.wantLast, res.Next.LastActivityDate)
			assert.Equal(t, tc.record.CurrentStreak, res.Next.CurrentStreak)
		})
	}
}

func TestApplyFreezeThenActivityNextDayContinues(t *testing.T) {
	record := withFreezes(overallRecord(3, "2026-01-13"), 1)

	frozen := ApplyFreeze(record, "2026-01-14")
	assert.Equal(t, FreezeApplied, frozen.Status)
	assert.Equal(t, 1, frozen.Next.FreezeDaysUsed)
	assert.Equal(t, clock.Date("2026-01-14"), frozen.Next.LastFreezeUsedDate)

	res := Decide(frozen.Next, input("overall", "2026-01-15"), DefaultPolicy())
	assert.Equal(t, domain.OutcomeContinued, res.Outcome)
	assert.Equal(t, 4, res.Next.CurrentStreak)
}

func TestAssess(t *testing.T) {
	policy := DefaultPolicy()

	today := Assess(overallRecord(4, "2026-01-14"), "2026-01-14", policy)
	assert.True(t, today.Active)
	assert.Equal(t, 1, today.DaysUntilStreakLoss)
	assert.Equal(t, 4, today.EffectiveStreak)

	yesterday := Assess(overallRecord(4, "2026-01-13"), "2026-01-14", policy)
	assert.True(t, yesterday.Active)
	assert.Equal(t, 0, yesterday.DaysUntilStreakLoss)
	assert.Equal(t, 4, yesterday.EffectiveStreak)

	bridgeable := Assess(withFreezes(overallRecord(4, "2026-01-12"), 1), "2026-01-14", policy)
	assert.False(t, bridgeable.Active)
	assert.Equal(t, 4, bridgeable.EffectiveStreak)

	subject := overallRecord(4, "2026-01-12")
	subject.Subject = "biology"
	lost := Assess(subject, "2026-01-14", policy)
	assert.False(t, lost.Active)
	assert.Equal(t, 0, lost.EffectiveStreak)

	frozen := overallRecord(4, "2026-01-14")
	frozen.LastFreezeUsedDate = "2026-01-14"
	assert.True(t, Assess(frozen, "2026-01-14", policy).FrozeToday)
	assert.False(t, Assess(frozen, "2026-01-15", policy).FrozeToday)

	assert.Equal(t, Standing{}, Assess(nil, "2026-01-14", policy))
}

func withFreezes(r *domain.StreakRecord, n int) *domain.StreakRecord {
	r.FreezeDays = n
	return r
}
