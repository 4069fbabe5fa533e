package reservation

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/dto"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

// GetSchedule renders one day: every generated slot with its booking, plus
// any reservations that sit outside the slot grid.
type GetSchedule struct {
	d    Deps
	list *ListReservations
}

func NewGetSchedule(d Deps, list *ListReservations) *GetSchedule {
	return &GetSchedule{d: d.withDefaults(), list: list}
}

// Execute defaults to today when rawDate is empty.
func (uc *GetSchedule) Execute(ctx context.Context, rawDate string) (*dto.DayScheduleDTO, error) {
	d := uc.d
	now := d.Now()

	date := now.Format(booking.DateLayout)
	if rawDate != "" {
		parsed, ok := d.Normalizer.ParseDate(rawDate)
		if !ok {
			return nil, &booking.Rejection{Reason: booking.ReasonParseFailure, Value: rawDate}
		}
		date = parsed
	}

	day, err := time.ParseInLocation(booking.DateLayout, date, now.Location())
	if err != nil {
		return nil, &booking.Rejection{Reason: booking.ReasonParseFailure, Value: date}
	}

	settings, err := d.Settings.Execute(ctx)
	if err != nil {
		return nil, err
	}

	reservations, err := uc.list.Execute(ctx, ListReservationsInput{Date: date})
	if err != nil {
		return nil, err
	}

	out := &dto.DayScheduleDTO{
		Date:       date,
		Weekday:    day.Weekday().String(),
		WorkingDay: booking.IsWorkingDay(*settings, day),
		Slots:      []dto.ScheduleSlotDTO{},
		Unslotted:  []models.Reservation{},
	}

	slotted := make(map[string]bool)
	if out.WorkingDay {
		for _, slot := range booking.GenerateSlots(*settings, day, now) {
			entry := dto.ScheduleSlotDTO{Time: slot.Time, IsPast: slot.IsPast}
			if held := booking.FindConflict(reservations, date, slot.Time, ""); held != nil {
				r := *held
				entry.Booked = true
				entry.Reservation = &r
				slotted[r.ID] = true
			}
			out.Slots = append(out.Slots, entry)
		}
	}

	for _, r := range reservations {
		if !slotted[r.ID] {
			out.Unslotted = append(out.Unslotted, r)
		}
	}

	return out, nil
}
