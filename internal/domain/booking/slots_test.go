package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestGenerateSlots_DefaultSettings(t *testing.T) {
	s := DefaultSettings()

	slots := GenerateSlots(s, day(2024, 3, 4), at(2024, 3, 1, 12, 0))

	require.Len(t, slots, 18)
	assert.Equal(t, "9:00 AM", slots[0].Time)
	assert.Equal(t, "12:00 PM", slots[6].Time)
	assert.Equal(t, "5:30 PM", slots[17].Time)
	for _, sl := range slots {
		assert.False(t, sl.IsPast)
	}
}

func TestGenerateSlots_EvenDivisionProperty(t *testing.T) {
	for _, duration := range []int{5, 10, 15, 20, 30, 60} {
		for start := 0; start < 23; start += 3 {
			for end := start + 1; end <= 23; end += 4 {
				s := models.BusinessSettings{StartHour: start, EndHour: end, AppointmentDuration: duration}
				slots := GenerateSlots(s, day(2024, 5, 1), at(2024, 4, 1, 0, 0))

				require.Len(t, slots, (end-start)*60/duration, "start=%d end=%d d=%d", start, end, duration)

				prev := -1
				for _, sl := range slots {
					m, ok := ClockMinutes(sl.Time)
					require.True(t, ok)
					if prev >= 0 {
						assert.Equal(t, duration, m-prev)
					}
					assert.LessOrEqual(t, m+duration, end*60)
					prev = m
				}
			}
		}
	}
}

func TestGenerateSlots_DoesNotCrossClosing(t *testing.T) {
	s := models.BusinessSettings{StartHour: 9, EndHour: 11, AppointmentDuration: 45}

	slots := GenerateSlots(s, day(2024, 5, 1), at(2024, 4, 1, 0, 0))

	var labels []string
	for _, sl := range slots {
		labels = append(labels, sl.Time)
	}
	// calendar aligned: 9:00, 9:45 then 10:00; 10:45 would end at 11:30
	assert.Equal(t, []string{"9:00 AM", "9:45 AM", "10:00 AM"}, labels)
}

func TestGenerateSlots_MidnightHourLabel(t *testing.T) {
	s := models.BusinessSettings{StartHour: 0, EndHour: 1, AppointmentDuration: 30}

	slots := GenerateSlots(s, day(2024, 5, 1), at(2024, 4, 1, 0, 0))

	require.Len(t, slots, 2)
	assert.Equal(t, "12:00 AM", slots[0].Time)
	assert.Equal(t, "12:30 AM", slots[1].Time)
}

func TestGenerateSlots_IsPastOnlyToday(t *testing.T) {
	s := DefaultSettings()
	now := at(2024, 3, 4, 10, 15)

	today := GenerateSlots(s, day(2024, 3, 4), now)
	require.Len(t, today, 18)
	assert.True(t, today[0].IsPast)  // 9:00
	assert.True(t, today[2].IsPast)  // 10:00
	assert.False(t, today[3].IsPast) // 10:30

	yesterday := GenerateSlots(s, day(2024, 3, 3), now)
	for _, sl := range yesterday {
		assert.False(t, sl.IsPast)
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	s := DefaultSettings()
	now := at(2024, 3, 4, 13, 0)

	assert.Equal(t, GenerateSlots(s, day(2024, 3, 4), now), GenerateSlots(s, day(2024, 3, 4), now))
}

func TestGenerateSlots_InvalidSettings(t *testing.T) {
	now := at(2024, 3, 4, 13, 0)

	assert.Empty(t, GenerateSlots(models.BusinessSettings{StartHour: 9, EndHour: 18}, day(2024, 3, 4), now))
	assert.Empty(t, GenerateSlots(models.BusinessSettings{StartHour: 18, EndHour: 9, AppointmentDuration: 30}, day(2024, 3, 4), now))
}
