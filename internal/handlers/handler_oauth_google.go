package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

const oauthStateCookie = "oauth_state"

// googleOAuthHandler signs existing employees in with Google. It never creates
// principals; the verified email must already belong to an active employee.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthSvcFacade
	authService        portssvc.AuthSvcFacade
	tokenService       portssvc.TokenSvcFacade
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &googleOAuthHandler{
		googleOAuthService: services.GoogleOAuth,
		authService:        services.Auth,
		tokenService:       services.Token,
	}
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login-url", h.loginURL)
		googleRoutes.POST("/exchange-code", h.exchangeCode)
	}
}

// loginURL godoc
// @Summary Google consent URL
// @Description Returns the Google consent page URL and the CSRF state the exchange must echo
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 404 {object} ErrorResponse "Google sign-in disabled"
// @Router /auth/google/login-url [get]
func (h *googleOAuthHandler) loginURL(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	if !h.googleOAuthService.Enabled() {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Google sign-in is not enabled"})
		return
	}

	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start Google sign-in"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{
		URL:   h.googleOAuthService.GetGoogleLoginURL(ctx, state),
		State: state,
	})
}

// exchangeCode godoc
// @Summary Exchange authorization code for access token
// @Description Exchanges a Google authorization code and signs in the matching employee
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.GoogleExchangeCodeRequest true "Authorization code and state"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid request or state"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Google sign-in disabled"
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	if !h.googleOAuthService.Enabled() {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Google sign-in is not enabled"})
		return
	}

	var req dto.GoogleExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || subtle.ConstantTimeCompare([]byte(expected), []byte(req.State)) != 1 {
		logger.Warn("OAuth state mismatch")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	identity, err := h.googleOAuthService.ExchangeCode(ctx, req.Code)
	if err != nil {
		respondError(c, err, "Google code exchange failed")
		return
	}

	principal, err := h.authService.SignInWithGoogle(ctx, *identity)
	if err != nil {
		respondError(c, err, "Google sign-in rejected")
		return
	}
	issueToken(c, h.tokenService, principal)
}
