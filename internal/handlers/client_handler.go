package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/httpresp"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	ucClient "github.com/BruksfildServices01/barber-calendar/internal/usecase/client"
)

type ClientHandler struct {
	list    *ucClient.ListClients
	create  *ucClient.CreateClient
	update  *ucClient.UpdateClient
	history *ucClient.ClientHistory
	log     *zap.Logger
}

func NewClientHandler(
	list *ucClient.ListClients,
	create *ucClient.CreateClient,
	update *ucClient.UpdateClient,
	history *ucClient.ClientHistory,
	log *zap.Logger,
) *ClientHandler {
	return &ClientHandler{list: list, create: create, update: update, history: history, log: log}
}

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.list.Execute(c.Request.Context(), c.Query("query"))
	if err != nil {
		writeError(c, h.log, err, "failed_to_list_clients")
		return
	}

	httpresp.List(c, clients)
}

// ======================================================
// CREATE CLIENT
// ======================================================
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Client name is required.")
		return
	}

	client, err := h.create.Execute(c.Request.Context(), ucClient.CreateClientInput{
		Actor: middleware.Actor(c),
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err, "failed_to_create_client")
		return
	}

	httpresp.Created(c, client)
}

// ======================================================
// UPDATE CLIENT
// ======================================================
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	client, err := h.update.Execute(c.Request.Context(), ucClient.UpdateClientInput{
		Actor: middleware.Actor(c),
		ID:    id,
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err, "failed_to_update_client")
		return
	}

	httpresp.OK(c, client)
}

// ======================================================
// CLIENT HISTORY
// ======================================================
func (h *ClientHandler) History(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	out, err := h.history.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err, "failed_to_load_history")
		return
	}

	httpresp.OK(c, out)
}
