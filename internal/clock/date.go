package clock

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid_date")

// Date is a canonical calendar date in YYYY-MM-DD form.
type Date string

// ParseDate validates and normalizes a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return "", ErrInvalidDate
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) String() string {
	return string(d)
}

func (d Date) IsZero() bool {
	return d == ""
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) (Date, error) {
	t, err := d.midnight()
	if err != nil {
		return "", err
	}
	return DateOf(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the signed number of calendar days from b to a.
// Both dates are anchored at UTC midnight, which has no offset changes,
// so the result only depends on the date components.
func DaysBetween(a, b Date) (int, error) {
	ta, err := a.midnight()
	if err != nil {
		return 0, err
	}
	tb, err := b.midnight()
	if err != nil {
		return 0, err
	}
	return int(dayNumber(ta) - dayNumber(tb)), nil
}

func (d Date) midnight() (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, string(d), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func dayNumber(t time.Time) int64 {
	return t.Unix() / 86400
}
