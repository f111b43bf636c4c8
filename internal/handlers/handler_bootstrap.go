package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

type bootstrapHandler struct {
	bootstrapService portssvc.BootstrapSvc
}

func registerBootstrapRoutes(rg *gin.RouterGroup, bootstrapService portssvc.BootstrapSvc) {
	h := &bootstrapHandler{bootstrapService: bootstrapService}

	bootstrap := rg.Group("/bootstrap")
	{
		bootstrap.GET("/status", h.status)
		bootstrap.POST("", h.initialize)
	}
}

// status godoc
// @Summary Bootstrap status
// @Description Reports whether the first administrator still has to be created
// @Tags bootstrap
// @Produce json
// @Success 200 {object} dto.BootstrapStatusResponse
// @Failure 503 {object} ErrorResponse
// @Router /bootstrap/status [get]
func (h *bootstrapHandler) status(c *gin.Context) {
	empty, err := h.bootstrapService.IsEmpty(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to read bootstrap status")
		return
	}
	c.JSON(http.StatusOK, dto.BootstrapStatusResponse{Empty: empty})
}

// initialize godoc
// @Summary Create the first administrator
// @Description Creates the super_admin group and the first employee. Only succeeds once.
// @Tags bootstrap
// @Accept json
// @Produce json
// @Param bootstrap body dto.BootstrapRequest true "First administrator"
// @Success 201 {object} dto.EmployeeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already initialized"
// @Failure 500 {object} ErrorResponse
// @Router /bootstrap [post]
func (h *bootstrapHandler) initialize(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	principal, err := h.bootstrapService.Initialize(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var initErr *apperrors.InitializationError
		if errors.As(err, &initErr) && initErr.IdentityID != "" {
			logger.Error("Bootstrap left an orphaned credential",
				slog.String("stage", initErr.Stage),
				slog.String("identity_id", initErr.IdentityID))
		}
		respondError(c, err, "Bootstrap failed")
		return
	}

	logger.Info("First administrator created", slog.String("principal_id", principal.ID))
	c.JSON(http.StatusCreated, dto.ToEmployeeResponse(principal))
}
