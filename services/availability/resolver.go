package availability

import (
	"errors"
	"fmt"
	"time"

	"guruconnect/models"
)

// ErrInvalidWeekday is returned for any day name outside Sunday..Saturday.
var ErrInvalidWeekday = errors.New("invalid weekday")

// Canonical Sunday-first ordering; the index equals time.Weekday.
var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Clock isolates "now" so date math can be tested on fixed dates.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// ParseWeekday maps a canonical weekday name to time.Weekday. Matching is exact.
func ParseWeekday(name string) (time.Weekday, error) {
	for i, n := range weekdayNames {
		if n == name {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}

// WeekdayName returns the canonical name of d.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[int(d)%7]
}

// DistinctWeekdays returns the weekday names referenced by the schedule,
// first-seen order, without duplicates.
func DistinctWeekdays(schedule []models.AvailabilityEntry) []string {
	seen := make(map[string]struct{}, 7)
	days := make([]string, 0, 7)
	for _, e := range schedule {
		if _, ok := seen[e.Day]; ok {
			continue
		}
		seen[e.Day] = struct{}{}
		days = append(days, e.Day)
	}
	return days
}

// NextDateForWeekday returns the first date on or after today that falls on
// the named weekday. Same-day matches resolve to today. The result is
// midnight in today's location.
func NextDateForWeekday(name string, today time.Time) (time.Time, error) {
	target, err := ParseWeekday(name)
	if err != nil {
		return time.Time{}, err
	}
	delta := (int(target) - int(today.Weekday()) + 7) % 7
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return midnight.AddDate(0, 0, delta), nil
}

// TimesForWeekday returns the time labels offered on the named weekday in
// schedule order. An empty result means no slots that day.
func TimesForWeekday(schedule []models.AvailabilityEntry, name string) ([]string, error) {
	if _, err := ParseWeekday(name); err != nil {
		return nil, err
	}
	times := make([]string, 0)
	for _, e := range schedule {
		if e.Day == name {
			times = append(times, e.Time)
		}
	}
	return times, nil
}

// Offers reports whether the schedule contains exactly this (day, time) pair.
func Offers(schedule []models.AvailabilityEntry, day, timeLabel string) bool {
	for _, e := range schedule {
		if e.Day == day && e.Time == timeLabel {
			return true
		}
	}
	return false
}

// ValidateSchedule rejects schedules that reference unknown weekdays.
func ValidateSchedule(schedule []models.AvailabilityEntry) error {
	for _, e := range schedule {
		if _, err := ParseWeekday(e.Day); err != nil {
			return err
		}
		if e.Time == "" {
			return fmt.Errorf("empty time label for %s", e.Day)
		}
	}
	return nil
}

// Resolver binds the pure functions to a clock.
type Resolver struct {
	Clock Clock
}

// NewResolver returns a resolver on the given clock, or the system clock when nil.
func NewResolver(clock Clock) *Resolver {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Resolver{Clock: clock}
}

// Today returns the current date at midnight.
func (r *Resolver) Today() time.Time {
	now := r.Clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Resolve pins (day, time) to its next concrete date. It is recomputed on
// every call so it never goes stale across midnight.
func (r *Resolver) Resolve(day, timeLabel string) (models.ResolvedSlot, error) {
	date, err := NextDateForWeekday(day, r.Clock.Now())
	if err != nil {
		return models.ResolvedSlot{}, err
	}
	return models.ResolvedSlot{Weekday: day, TimeLabel: timeLabel, Date: date}, nil
}

// NextDate is NextDateForWeekday relative to the resolver's clock.
func (r *Resolver) NextDate(day string) (time.Time, error) {
	return NextDateForWeekday(day, r.Clock.Now())
}
