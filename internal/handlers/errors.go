package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
)

var rejectionStatus = map[booking.Reason]int{
	booking.ReasonParseFailure:  http.StatusBadRequest,
	booking.ReasonNonWorkingDay: http.StatusUnprocessableEntity,
	booking.ReasonSlotTaken:     http.StatusConflict,
	booking.ReasonPastSlot:      http.StatusUnprocessableEntity,
}

var businessStatus = map[string]int{
	"reservation_not_found":  http.StatusNotFound,
	"client_not_found":       http.StatusNotFound,
	"client_name_taken":      http.StatusConflict,
	"invalid_settings":       http.StatusUnprocessableEntity,
	"invalid_email_domain":   http.StatusUnprocessableEntity,
	"csv_source_unavailable": http.StatusNotFound,
	"csv_too_large":          http.StatusRequestEntityTooLarge,
}

// writeError renders a use-case error. Rejections and business errors are
// the caller's fault; anything else is logged and hidden behind a 500.
func writeError(c *gin.Context, log *zap.Logger, err error, fallbackCode string) {
	if rej, ok := booking.AsRejection(err); ok {
		status, known := rejectionStatus[rej.Reason]
		if !known {
			status = http.StatusBadRequest
		}
		msg := strings.TrimPrefix(rej.Error(), "booking: ")
		c.AbortWithStatusJSON(status, gin.H{
			"error_code": string(rej.Reason),
			"message":    msg,
			"taken_by":   rej.TakenBy,
		})
		return
	}

	if be, ok := httperr.AsBusiness(err); ok {
		status, known := businessStatus[be.Code]
		if !known {
			status = http.StatusBadRequest
		}
		httperr.Write(c, status, be.Code, be.Message)
		return
	}

	log.Error("request failed",
		zap.String("route", c.FullPath()),
		zap.String("code", fallbackCode),
		zap.Error(err),
	)
	httperr.Internal(c, fallbackCode, "Something went wrong.")
}

// idParam reads a uuid path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid id.")
		return "", false
	}
	return id, true
}
