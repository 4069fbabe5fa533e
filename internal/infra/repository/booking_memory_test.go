package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
)

func TestMemory_Settings(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingMemoryRepository()

	_, err := repo.GetSettings(ctx)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	s := booking.DefaultSettings()
	require.NoError(t, repo.SaveSettings(ctx, &s))

	// mutating the caller's copy does not reach the store
	s.Services[0].Name = "changed"

	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", got.Services[0].Name)
	assert.Equal(t, models.SettingsID, got.ID)
}

func TestMemory_ReservationSlotIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingMemoryRepository()

	a := models.Reservation{ClientName: "Ana", Date: "2024-03-04", Time: "10:00 AM"}
	require.NoError(t, repo.CreateReservation(ctx, &a))
	assert.NotEmpty(t, a.ID)

	b := models.Reservation{ClientName: "Ben", Date: "2024-03-04", Time: "10:00 AM"}
	assert.ErrorIs(t, repo.CreateReservation(ctx, &b), booking.ErrDuplicate)

	b.Time = "10:30 AM"
	require.NoError(t, repo.CreateReservation(ctx, &b))

	// moving b onto a's slot is refused, re-saving a in place is not
	b.Time = "10:00 AM"
	assert.ErrorIs(t, repo.UpdateReservation(ctx, &b), booking.ErrDuplicate)
	a.Notes = "updated"
	require.NoError(t, repo.UpdateReservation(ctx, &a))

	got, err := repo.GetReservation(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Notes)
}

func TestMemory_ListReservationsFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingMemoryRepository()

	for _, r := range []models.Reservation{
		{ClientID: "c1", Date: "2024-03-05", Time: "9:00 AM"},
		{ClientID: "c2", Date: "2024-03-04", Time: "9:00 AM"},
		{ClientID: "c1", Date: "2024-03-04", Time: "9:30 AM"},
	} {
		r := r
		require.NoError(t, repo.CreateReservation(ctx, &r))
	}

	all, err := repo.ListReservations(ctx, booking.ReservationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-04", all[0].Date)
	assert.Equal(t, "2024-03-05", all[2].Date)

	byDate, _ := repo.ListReservations(ctx, booking.ReservationFilter{Date: "2024-03-04"})
	assert.Len(t, byDate, 2)

	byClient, _ := repo.ListReservations(ctx, booking.ReservationFilter{ClientID: "c1"})
	assert.Len(t, byClient, 2)

	both, _ := repo.ListReservations(ctx, booking.ReservationFilter{ClientID: "c1", Date: "2024-03-05"})
	assert.Len(t, both, 1)
}

func TestMemory_DeleteReservation(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingMemoryRepository()

	r := models.Reservation{Date: "2024-03-04", Time: "9:00 AM"}
	require.NoError(t, repo.CreateReservation(ctx, &r))

	require.NoError(t, repo.DeleteReservation(ctx, r.ID))
	assert.ErrorIs(t, repo.DeleteReservation(ctx, r.ID), booking.ErrNotFound)

	_, err := repo.GetReservation(ctx, r.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	// the slot is free again
	again := models.Reservation{Date: "2024-03-04", Time: "9:00 AM"}
	assert.NoError(t, repo.CreateReservation(ctx, &again))
}

func TestMemory_ClientNameIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingMemoryRepository()

	a := models.Client{Name: "Arben"}
	require.NoError(t, repo.CreateClient(ctx, &a))
	assert.Equal(t, "arben", a.NameKey)

	dup := models.Client{Name: " ARBEN "}
	assert.ErrorIs(t, repo.CreateClient(ctx, &dup), booking.ErrDuplicate)

	b := models.Client{Name: "Besa"}
	require.NoError(t, repo.CreateClient(ctx, &b))

	b.Name = "arben"
	assert.ErrorIs(t, repo.UpdateClient(ctx, &b), booking.ErrDuplicate)

	a.Phone = "044"
	require.NoError(t, repo.UpdateClient(ctx, &a))

	list, err := repo.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Arben", list[0].Name)
	assert.Equal(t, "044", list[0].Phone)
	assert.Equal(t, "Besa", list[1].Name)

	missing := models.Client{ID: "nope", Name: "X"}
	assert.ErrorIs(t, repo.UpdateClient(ctx, &missing), booking.ErrNotFound)
}

func TestMemory_AuditLogs(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingMemoryRepository()
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	for i, action := range []string{"reservation_created", "client_updated", "reservation_created"} {
		require.NoError(t, repo.SaveAuditLog(ctx, &models.AuditLog{
			Action:    action,
			Entity:    "x",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	logs, total, err := repo.ListAuditLogs(ctx, booking.AuditFilter{Action: "reservation_created"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	from := base.Add(30 * time.Minute)
	logs, total, _ = repo.ListAuditLogs(ctx, booking.AuditFilter{From: &from})
	assert.EqualValues(t, 2, total)
	assert.Len(t, logs, 2)

	logs, total, _ = repo.ListAuditLogs(ctx, booking.AuditFilter{Limit: 1, Offset: 1})
	assert.EqualValues(t, 3, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "client_updated", logs[0].Action)

	logs, _, _ = repo.ListAuditLogs(ctx, booking.AuditFilter{Limit: 5, Offset: 10})
	assert.Empty(t, logs)
}
