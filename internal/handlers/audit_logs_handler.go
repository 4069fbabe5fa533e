package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/httpresp"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store booking.AuditStore
	log   *zap.Logger
}

func NewAuditLogsHandler(store booking.AuditStore, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, log: log}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	// --------------------------------------------------
	// Filters
	// --------------------------------------------------

	f := booking.AuditFilter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse(booking.DateLayout, fromStr); err == nil {
			f.From = &from
		}
	}

	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse(booking.DateLayout, toStr); err == nil {
			end := to.Add(24 * time.Hour)
			f.To = &end
		}
	}

	// --------------------------------------------------
	// Listing
	// --------------------------------------------------

	logs, total, err := h.store.ListAuditLogs(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err, "audit_list_failed")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
