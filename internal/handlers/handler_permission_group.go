package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// permissionGroupHandler handles HTTP requests related to permission groups.
type permissionGroupHandler struct {
	groupService portssvc.PermissionGroupSvcFacade
}

func registerPermissionGroupRoutes(rg *gin.RouterGroup, groupService portssvc.PermissionGroupSvcFacade) {
	h := &permissionGroupHandler{groupService: groupService}

	groups := rg.Group("/permission-groups")
	{
		groups.GET("", h.listGroups)
		groups.POST("", h.createGroup)
		groups.GET("/:groupID", h.getGroup)
		groups.PUT("/:groupID", h.updateGroup)
		groups.DELETE("/:groupID", h.deleteGroup)
	}
}

// createGroup godoc
// @Summary Create a permission group
// @Tags permission groups
// @Accept json
// @Produce json
// @Param group body dto.CreatePermissionGroupRequest true "Group"
// @Success 201 {object} dto.PermissionGroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Name already used"
// @Security BearerAuth
// @Router /permission-groups [post]
func (h *permissionGroupHandler) createGroup(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreatePermissionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to create permission group")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Permission group created", slog.String("group_id", group.ID))
	c.JSON(http.StatusCreated, dto.ToPermissionGroupResponse(group))
}

// listGroups godoc
// @Summary List permission groups
// @Tags permission groups
// @Produce json
// @Success 200 {array} dto.PermissionGroupResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /permission-groups [get]
func (h *permissionGroupHandler) listGroups(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	groups, err := h.groupService.ListGroups(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to list permission groups")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPermissionGroupResponse(groups))
}

// getGroup godoc
// @Summary Get a permission group
// @Tags permission groups
// @Produce json
// @Param groupID path string true "Group ID"
// @Success 200 {object} dto.PermissionGroupResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /permission-groups/{groupID} [get]
func (h *permissionGroupHandler) getGroup(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	group, err := h.groupService.GetGroup(c.Request.Context(), actor, c.Param("groupID"))
	if err != nil {
		respondError(c, err, "Failed to get permission group")
		return
	}
	c.JSON(http.StatusOK, dto.ToPermissionGroupResponse(group))
}

// updateGroup godoc
// @Summary Update a permission group
// @Description Fields that are omitted keep their value. Changes apply to the next permission check.
// @Tags permission groups
// @Accept json
// @Produce json
// @Param groupID path string true "Group ID"
// @Param group body dto.UpdatePermissionGroupRequest true "Fields to change"
// @Success 200 {object} dto.PermissionGroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /permission-groups/{groupID} [put]
func (h *permissionGroupHandler) updateGroup(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.UpdatePermissionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	group, err := h.groupService.UpdateGroup(c.Request.Context(), actor, c.Param("groupID"), req)
	if err != nil {
		respondError(c, err, "Failed to update permission group")
		return
	}
	c.JSON(http.StatusOK, dto.ToPermissionGroupResponse(group))
}

// deleteGroup godoc
// @Summary Delete a permission group
// @Description Fails while any employee is assigned to the group
// @Tags permission groups
// @Param groupID path string true "Group ID"
// @Success 204
// @Failure 400 {object} ErrorResponse "Group still assigned"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /permission-groups/{groupID} [delete]
func (h *permissionGroupHandler) deleteGroup(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.groupService.DeleteGroup(c.Request.Context(), actor, c.Param("groupID")); err != nil {
		respondError(c, err, "Failed to delete permission group")
		return
	}
	c.Status(http.StatusNoContent)
}
