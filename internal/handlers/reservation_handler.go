package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/httpresp"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	ucReservation "github.com/BruksfildServices01/barber-calendar/internal/usecase/reservation"
)

// ======================================================
// HANDLER
// ======================================================

type ReservationHandler struct {
	create   *ucReservation.CreateReservation
	update   *ucReservation.UpdateReservation
	remove   *ucReservation.DeleteReservation
	list     *ucReservation.ListReservations
	schedule *ucReservation.GetSchedule
	log      *zap.Logger
}

func NewReservationHandler(
	create *ucReservation.CreateReservation,
	update *ucReservation.UpdateReservation,
	remove *ucReservation.DeleteReservation,
	list *ucReservation.ListReservations,
	schedule *ucReservation.GetSchedule,
	log *zap.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		create:   create,
		update:   update,
		remove:   remove,
		list:     list,
		schedule: schedule,
		log:      log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateReservationRequest struct {
	ClientName  string `json:"clientName" binding:"required"`
	ClientPhone string `json:"clientPhone"`
	Service     string `json:"service"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Notes       string `json:"notes"`
}

type UpdateReservationRequest struct {
	ClientName  *string `json:"clientName"`
	ClientPhone *string `json:"clientPhone"`
	Service     *string `json:"service"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Notes       *string `json:"notes"`
}

// ======================================================
// LIST
// ======================================================

func (h *ReservationHandler) List(c *gin.Context) {
	out, err := h.list.Execute(c.Request.Context(), ucReservation.ListReservationsInput{
		Date:     c.Query("date"),
		ClientID: c.Query("clientId"),
	})
	if err != nil {
		writeError(c, h.log, err, "failed_to_list_reservations")
		return
	}

	httpresp.List(c, out)
}

// ======================================================
// CREATE
// ======================================================

func (h *ReservationHandler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Client name, date and time are required.")
		return
	}

	res, err := h.create.Execute(c.Request.Context(), ucReservation.CreateReservationInput{
		Actor:       middleware.Actor(c),
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Service:     req.Service,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err, "failed_to_create_reservation")
		return
	}

	httpresp.Created(c, res)
}

// ======================================================
// UPDATE
// ======================================================

func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	res, err := h.update.Execute(c.Request.Context(), ucReservation.UpdateReservationInput{
		Actor:       middleware.Actor(c),
		ID:          id,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Service:     req.Service,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err, "failed_to_update_reservation")
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// DELETE
// ======================================================

func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), middleware.Actor(c), id); err != nil {
		writeError(c, h.log, err, "failed_to_delete_reservation")
		return
	}

	httpresp.NoContent(c)
}

// ======================================================
// SCHEDULE
// ======================================================

// Schedule returns one day of slots with their bookings. No date means today.
func (h *ReservationHandler) Schedule(c *gin.Context) {
	day, err := h.schedule.Execute(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeError(c, h.log, err, "failed_to_load_schedule")
		return
	}

	httpresp.OK(c, day)
}
