package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

type Slot struct {
	Time   string `json:"time"`
	IsPast bool   `json:"isPast"`
}

// GenerateSlots lists the bookable slots of date in display order.
//
// Slots are calendar aligned: inside every opening hour the offsets run
// 0, d, 2d, ... while below 60, and a slot is only emitted when it ends no
// later than closing time. IsPast is set only when date is the same day as
// now and the slot start lies before now.
func GenerateSlots(settings models.BusinessSettings, date, now time.Time) []Slot {
	duration := settings.AppointmentDuration
	if duration <= 0 || settings.StartHour >= settings.EndHour {
		return nil
	}

	closing := settings.EndHour * 60
	today := SameDay(date, now)

	var slots []Slot
	for hour := settings.StartHour; hour < settings.EndHour; hour++ {
		for minute := 0; minute < 60; minute += duration {
			start := hour*60 + minute
			if start+duration > closing {
				break
			}

			slot := Slot{Time: Label(start)}
			if today {
				slot.IsPast = startOf(date, start).Before(now)
			}
			slots = append(slots, slot)
		}
	}

	return slots
}

// SameDay compares calendar days in date's location.
func SameDay(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.In(date.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func startOf(date time.Time, minutes int) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		minutes/60, minutes%60, 0, 0,
		date.Location(),
	)
}
