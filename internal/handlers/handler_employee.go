package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// employeeHandler handles HTTP requests related to employees.
type employeeHandler struct {
	principalService portssvc.PrincipalSvcFacade
}

// registerEmployeeRoutes registers all employee-related routes.
func registerEmployeeRoutes(rg *gin.RouterGroup, principalService portssvc.PrincipalSvcFacade) {
	h := &employeeHandler{principalService: principalService}

	employees := rg.Group("/employees")
	{
		employees.GET("", h.listEmployees)
		employees.POST("", h.createEmployee)
		employees.GET("/:employeeID", h.getEmployee)
		employees.PUT("/:employeeID", h.updateEmployee)
		employees.DELETE("/:employeeID", h.deactivateEmployee)
	}
}

// createEmployee godoc
// @Summary Create an employee
// @Description Creates a password credential and the employee record
// @Tags employees
// @Accept json
// @Produce json
// @Param employee body dto.CreateEmployeeRequest true "Employee"
// @Success 201 {object} dto.EmployeeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already used"
// @Security BearerAuth
// @Router /employees [post]
func (h *employeeHandler) createEmployee(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	employee, err := h.principalService.CreateEmployee(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to create employee")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Employee created", slog.String("employee_id", employee.ID))
	c.JSON(http.StatusCreated, dto.ToEmployeeResponse(employee))
}

// listEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListEmployeesResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees [get]
func (h *employeeHandler) listEmployees(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var params dto.ListEmployeesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	employees, err := h.principalService.ListEmployees(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, dto.ToListEmployeesResponse(employees))
}

// getEmployee godoc
// @Summary Get an employee
// @Tags employees
// @Produce json
// @Param employeeID path string true "Employee ID"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees/{employeeID} [get]
func (h *employeeHandler) getEmployee(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	employee, err := h.principalService.GetEmployee(c.Request.Context(), actor, c.Param("employeeID"))
	if err != nil {
		respondError(c, err, "Failed to get employee")
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(employee))
}

// updateEmployee godoc
// @Summary Update an employee
// @Description Changing the permission group requires settings.edit
// @Tags employees
// @Accept json
// @Produce json
// @Param employeeID path string true "Employee ID"
// @Param employee body dto.UpdateEmployeeRequest true "Fields to change"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees/{employeeID} [put]
func (h *employeeHandler) updateEmployee(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	employee, err := h.principalService.UpdateEmployee(c.Request.Context(), actor, c.Param("employeeID"), req)
	if err != nil {
		respondError(c, err, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, dto.ToEmployeeResponse(employee))
}

// deactivateEmployee godoc
// @Summary Deactivate an employee
// @Description Employees are never deleted. Deactivating yourself is rejected.
// @Tags employees
// @Param employeeID path string true "Employee ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /employees/{employeeID} [delete]
func (h *employeeHandler) deactivateEmployee(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.principalService.DeactivateEmployee(c.Request.Context(), actor, c.Param("employeeID")); err != nil {
		respondError(c, err, "Failed to deactivate employee")
		return
	}
	c.Status(http.StatusNoContent)
}
