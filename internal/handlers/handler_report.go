package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/gin-gonic/gin"
)

type reportHandler struct {
	reportService portssvc.ReportSvc
}

func registerReportRoutes(rg *gin.RouterGroup, reportService portssvc.ReportSvc) {
	h := &reportHandler{reportService: reportService}

	reports := rg.Group("/reports")
	{
		reports.GET("/profit", h.profitSummary)
	}
}

// profitSummary godoc
// @Summary Profit per currency
// @Description Totals of persisted records by entry day. Changes with mismatched currencies are counted separately and never summed.
// @Tags reports
// @Produce json
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.ProfitSummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/profit [get]
func (h *reportHandler) profitSummary(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var params dto.ProfitReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	summary, err := h.reportService.ProfitSummary(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to build profit report")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitSummaryResponse(summary))
}
