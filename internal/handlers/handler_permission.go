package handlers

import (
	"net/http"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/gin-gonic/gin"
)

// permissionHandler exposes the caller's own identity and permissions.
type permissionHandler struct {
	authorization portssvc.AuthorizationSvc
	groups        portssvc.PermissionGroupReaderSvc
}

func registerPermissionRoutes(rg *gin.RouterGroup, authorization portssvc.AuthorizationSvc, groups portssvc.PermissionGroupReaderSvc) {
	h := &permissionHandler{authorization: authorization, groups: groups}

	rg.GET("/me", h.me)
	rg.GET("/me/permissions", h.myPermissions)

	permissions := rg.Group("/permissions")
	{
		permissions.GET("/catalog", h.catalog)
		permissions.POST("/check", h.check)
	}
}

// me godoc
// @Summary Current employee
// @Tags permissions
// @Produce json
// @Success 200 {object} dto.EmployeeResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *permissionHandler) me(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(&actor))
}

// myPermissions godoc
// @Summary Effective permissions of the caller
// @Description Admin groups are expanded to the full catalog
// @Tags permissions
// @Produce json
// @Success 200 {object} dto.EffectivePermissionsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Security BearerAuth
// @Router /me/permissions [get]
func (h *permissionHandler) myPermissions(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	ep, err := h.authorization.EffectivePermissions(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to resolve effective permissions")
		return
	}
	c.JSON(http.StatusOK, dto.ToEffectivePermissionsResponse(ep))
}

// catalog godoc
// @Summary Permission catalog
// @Tags permissions
// @Produce json
// @Success 200 {object} dto.CatalogResponse
// @Security BearerAuth
// @Router /permissions/catalog [get]
func (h *permissionHandler) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CatalogResponse{
		Version: domain.CatalogVersion,
		Modules: h.groups.GetCatalog(),
	})
}

// check godoc
// @Summary Check a permission
// @Description Reports whether the caller may perform action on module
// @Tags permissions
// @Accept json
// @Produce json
// @Param check body dto.CheckPermissionRequest true "Module and action"
// @Success 200 {object} domain.Decision
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /permissions/check [post]
func (h *permissionHandler) check(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CheckPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	module := domain.Module(strings.ToLower(strings.TrimSpace(req.Module)))
	action := domain.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	c.JSON(http.StatusOK, h.authorization.Check(c.Request.Context(), actor, module, action))
}
