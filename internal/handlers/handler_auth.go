package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authHandler handles authentication related requests.
type authHandler struct {
	authService  portssvc.AuthSvcFacade
	tokenService portssvc.TokenSvcFacade
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &authHandler{
		authService:  services.Auth,
		tokenService: services.Token,
	}

	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.login)
	}
	registerGoogleOAuthRoutes(auth, services)
}

// login godoc
// @Summary Employee login
// @Description Authenticates an active employee and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	principal, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	issueToken(c, h.tokenService, principal)
}

// issueToken signs an access token for principal and writes the login response.
func issueToken(c *gin.Context, tokenService portssvc.TokenSvcFacade, principal *domain.Principal) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	token, expiresAt, err := tokenService.GenerateAccessToken(c.Request.Context(), principal)
	if err != nil {
		logger.Error("Failed to sign JWT token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	logger.Info("Principal signed in", slog.String("principal_id", principal.ID))
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Employee:  dto.ToEmployeeResponse(principal),
	})
}
