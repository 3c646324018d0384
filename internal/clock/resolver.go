package clock

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/smallbiznis/streakline/internal/cache"
)

var ErrInvalidTimezone = errors.New("invalid_timezone")

// Resolver maps instants to canonical dates in IANA zones.
type Resolver struct {
	clock     Clock
	fallback  func() string
	locations cache.Cache[string, *time.Location]
}

// NewResolver builds a resolver. fallback supplies the zone used when a
// caller passes an empty timezone.
func NewResolver(c Clock, fallback func() string) *Resolver {
	if fallback == nil {
		fallback = func() string { return "UTC" }
	}
	return &Resolver{
		clock:     c,
		fallback:  fallback,
		locations: cache.NewTTLCache[string, *time.Location](),
	}
}

// Normalize returns the zone name that will be used for tz.
func (r *Resolver) Normalize(tz string) (string, error) {
	loc, err := r.Location(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

func (r *Resolver) Location(tz string) (*time.Location, error) {
	name := strings.TrimSpace(tz)
	if name == "" {
		name = strings.TrimSpace(r.fallback())
	}
	if name == "" || strings.EqualFold(name, "local") {
		return nil, ErrInvalidTimezone
	}

	if loc, ok := r.locations.Get(name); ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	r.locations.Set(name, loc, 0)
	return loc, nil
}

// ResolveDate returns the local calendar date of instant in tz.
func (r *Resolver) ResolveDate(instant time.Time, tz string) (Date, error) {
	loc, err := r.Location(tz)
	if err != nil {
		return "", err
	}
	return DateOf(instant.In(loc)), nil
}

func (r *Resolver) Today(tz string) (Date, error) {
	return r.ResolveDate(r.clock.Now(), tz)
}

func (r *Resolver) Now() time.Time {
	return r.clock.Now()
}
