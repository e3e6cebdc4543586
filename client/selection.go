package client

import (
	"guruconnect/models"
	"guruconnect/services/availability"
)

// Selection is the day/time picker state for one tutor.
type Selection struct {
	resolver *availability.Resolver
	schedule []models.AvailabilityEntry

	weekday   string
	timeLabel string
}

// NewSelection binds a tutor's weekly schedule to a resolver; nil uses the system clock.
func NewSelection(schedule []models.AvailabilityEntry, resolver *availability.Resolver) *Selection {
	if resolver == nil {
		resolver = availability.NewResolver(nil)
	}
	return &Selection{resolver: resolver, schedule: schedule}
}

// Weekdays lists the days the tutor offers, without duplicates.
func (s *Selection) Weekdays() []string {
	return availability.DistinctWeekdays(s.schedule)
}

// SelectWeekday picks a day, clears the chosen time and returns the times offered that day.
func (s *Selection) SelectWeekday(name string) ([]string, error) {
	times, err := availability.TimesForWeekday(s.schedule, name)
	if err != nil {
		return nil, invalidWeekday(name, err)
	}
	s.weekday = name
	s.timeLabel = ""
	return times, nil
}

// Times returns the labels offered on the selected day.
func (s *Selection) Times() []string {
	if s.weekday == "" {
		return nil
	}
	times, _ := availability.TimesForWeekday(s.schedule, s.weekday)
	return times
}

// SelectTime picks one of the labels offered on the selected day.
func (s *Selection) SelectTime(label string) error {
	if s.weekday == "" {
		return newError(KindIncompleteSelection, "select a day first", nil)
	}
	for _, t := range s.Times() {
		if t == label {
			s.timeLabel = label
			return nil
		}
	}
	return newError(KindIncompleteSelection, "time "+label+" is not offered on "+s.weekday, nil)
}

func (s *Selection) Weekday() string   { return s.weekday }
func (s *Selection) TimeLabel() string { return s.timeLabel }

// Slot resolves the current choice against today's date. The date is
// recomputed on every call so a picker left open past midnight stays correct.
func (s *Selection) Slot() models.ResolvedSlot {
	if s.weekday == "" {
		return models.ResolvedSlot{}
	}
	slot, err := s.resolver.Resolve(s.weekday, s.timeLabel)
	if err != nil {
		return models.ResolvedSlot{}
	}
	return slot
}

// Clear resets both day and time.
func (s *Selection) Clear() {
	s.weekday = ""
	s.timeLabel = ""
}

func invalidWeekday(name string, err error) error {
	return newError(KindInvalidWeekday, "unknown weekday "+name, err)
}
