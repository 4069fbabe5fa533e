package booking

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// IsWorkingDay looks the weekday of date up in the settings.
func IsWorkingDay(settings models.BusinessSettings, date time.Time) bool {
	return settings.WorkingDays.IsOpen(date.Weekday())
}

// FindConflict returns the reservation holding (date, timeLabel), ignoring the
// reservation whose id is excludeID. An empty excludeID ignores nothing.
func FindConflict(reservations []models.Reservation, date, timeLabel, excludeID string) *models.Reservation {
	for i := range reservations {
		r := &reservations[i]
		if r.Date != date || r.Time != timeLabel {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		return r
	}
	return nil
}

// CanBook decides whether (date, timeLabel) may be booked. It returns nil or a
// *Rejection; the checks run in a fixed order: working day, conflict, past slot.
//
// excludeID marks an edit of an existing reservation. Edits skip the past-slot
// rule so an untouched booking in an elapsed slot stays valid.
func CanBook(
	settings models.BusinessSettings,
	reservations []models.Reservation,
	date string,
	timeLabel string,
	now time.Time,
	excludeID string,
) error {
	day, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return &Rejection{Reason: ReasonParseFailure, Value: date}
	}

	if !IsWorkingDay(settings, day) {
		return &Rejection{Reason: ReasonNonWorkingDay}
	}

	if taken := FindConflict(reservations, date, timeLabel, excludeID); taken != nil {
		return &Rejection{Reason: ReasonSlotTaken, TakenBy: taken.ClientName}
	}

	if excludeID == "" && SameDay(day, now) {
		if minutes, ok := ClockMinutes(timeLabel); ok && !startOf(day, minutes).After(now) {
			return &Rejection{Reason: ReasonPastSlot}
		}
	}

	return nil
}

// SortReservations orders by date, then by clock time. Labels that are not
// canonical sort after canonical ones of the same day.
func SortReservations(reservations []models.Reservation) {
	sort.SliceStable(reservations, func(i, j int) bool {
		a, b := reservations[i], reservations[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return clockKey(a.Time) < clockKey(b.Time)
	})
}

func clockKey(label string) int {
	if m, ok := ClockMinutes(label); ok {
		return m
	}
	return 24 * 60
}
