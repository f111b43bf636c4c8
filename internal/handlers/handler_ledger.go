package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// streamHeartbeat keeps idle SSE connections open through proxies.
const streamHeartbeat = 25 * time.Second

// ticketHandler handles sale, change and refund records.
type ticketHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	heartbeat     time.Duration
}

func registerTicketRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &ticketHandler{ledgerService: ledgerService, heartbeat: streamHeartbeat}

	tickets := rg.Group("/tickets")
	{
		tickets.GET("", h.listEntries)
		tickets.GET("/stream", h.stream)
		tickets.POST("/sales", h.createSale)
		tickets.POST("/changes", h.createChange)
		tickets.POST("/refunds", h.createRefund)
		tickets.GET("/:entryID", h.getEntry)
		tickets.PATCH("/:entryID", h.updateEntry)
		tickets.DELETE("/:entryID", h.deleteEntry)
	}
}

// createSale godoc
// @Summary Record a ticket sale
// @Description Profit is the exact sum of sale minus purchase over all passengers
// @Tags tickets
// @Accept json
// @Produce json
// @Param sale body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/sales [post]
func (h *ticketHandler) createSale(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := h.ledgerService.CreateSale(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to record sale")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Sale recorded", slog.String("entry_id", entry.ID))
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// createChange godoc
// @Summary Record a ticket change
// @Description When the two legs use different currencies the profit is reported as a currency mismatch
// @Tags tickets
// @Accept json
// @Produce json
// @Param change body dto.CreateChangeRequest true "Change"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/changes [post]
func (h *ticketHandler) createChange(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := h.ledgerService.CreateChange(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to record change")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Change recorded", slog.String("entry_id", entry.ID))
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// createRefund godoc
// @Summary Record a refund
// @Tags tickets
// @Accept json
// @Produce json
// @Param refund body dto.CreateRefundRequest true "Refund"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/refunds [post]
func (h *ticketHandler) createRefund(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := h.ledgerService.CreateRefund(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to record refund")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Refund recorded", slog.String("entry_id", entry.ID))
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// listEntries godoc
// @Summary List ticket records
// @Description Newest first. Pass nextToken from the previous page to continue.
// @Tags tickets
// @Produce json
// @Param kind query string false "sale, change or refund"
// @Param pnr query string false "Booking reference"
// @Param source query string false "Source"
// @Param beneficiary query string false "Beneficiary"
// @Param from query string false "First entry day (YYYY-MM-DD)"
// @Param to query string false "Last entry day (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets [get]
func (h *ticketHandler) listEntries(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	resp, err := h.ledgerService.ListEntries(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list ticket records")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a ticket record
// @Tags tickets
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/{entryID} [get]
func (h *ticketHandler) getEntry(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), actor, c.Param("entryID"))
	if err != nil {
		respondError(c, err, "Failed to get ticket record")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry))
}

// updateEntry godoc
// @Summary Update a ticket record
// @Description Omitted fields keep their value. The merged record is validated as a whole.
// @Tags tickets
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param entry body dto.UpdateLedgerEntryRequest true "Fields to change"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/{entryID} [patch]
func (h *ticketHandler) updateEntry(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.UpdateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := h.ledgerService.Update(c.Request.Context(), actor, c.Param("entryID"), req)
	if err != nil {
		respondError(c, err, "Failed to update ticket record")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a ticket record
// @Description Deleting a missing or already deleted record also returns 204
// @Tags tickets
// @Param entryID path string true "Entry ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/{entryID} [delete]
func (h *ticketHandler) deleteEntry(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.ledgerService.Delete(c.Request.Context(), actor, c.Param("entryID")); err != nil {
		respondError(c, err, "Failed to delete ticket record")
		return
	}
	c.Status(http.StatusNoContent)
}

// stream godoc
// @Summary Stream ticket changes
// @Description Server-sent events named created, updated and removed. A ready event is sent once subscribed.
// @Tags tickets
// @Produce text/event-stream
// @Param kind query string false "sale, change or refund"
// @Param pnr query string false "Booking reference"
// @Param source query string false "Source"
// @Param beneficiary query string false "Beneficiary"
// @Success 200 {object} domain.LedgerEvent
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /tickets/stream [get]
func (h *ticketHandler) stream(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)
	events, err := h.ledgerService.Subscribe(ctx, actor, params)
	if err != nil {
		respondError(c, err, "Failed to open ticket stream")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"principalId": actor.ID})
	c.Writer.Flush()
	logger.Info("Ticket stream opened")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Ticket stream closed by client")
			return
		case ev, open := <-events:
			if !open {
				logger.Info("Ticket stream closed by server")
				return
			}
			c.SSEvent(string(ev.Type), ev)
			c.Writer.Flush()
		case t := <-heartbeat.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			c.Writer.Flush()
		}
	}
}
