package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to the USD->IQD rate.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := &exchangeRateHandler{exchangeRateService: exchangeRateService}

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.POST("", h.recordRate)
		exchangeRates.GET("", h.history)
		exchangeRates.GET("/current", h.currentRate)
	}
}

// recordRate godoc
// @Summary Record the USD->IQD rate
// @Description Appends a point to the rate history
// @Tags exchange rates
// @Accept json
// @Produce json
// @Param rate body dto.RecordExchangeRateRequest true "Rate"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) recordRate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.RecordExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rate, err := h.exchangeRateService.RecordRate(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to record exchange rate")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Exchange rate recorded",
		slog.String("rate_id", rate.ID), slog.String("rate", rate.Rate.String()))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// currentRate godoc
// @Summary Current USD->IQD rate
// @Tags exchange rates
// @Produce json
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No rate recorded yet"
// @Security BearerAuth
// @Router /exchange-rates/current [get]
func (h *exchangeRateHandler) currentRate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	rate, err := h.exchangeRateService.CurrentRate(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to get current exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// history godoc
// @Summary USD->IQD rate history
// @Description Newest first, capped at the configured history limit
// @Tags exchange rates
// @Produce json
// @Param limit query int false "Number of points"
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) history(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListExchangeRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	rates, err := h.exchangeRateService.History(c.Request.Context(), actor, params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list exchange rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}
