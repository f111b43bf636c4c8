package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// CreateEmployeeRequest defines the payload for adding an employee with a password credential.
type CreateEmployeeRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	PermissionGroupID string `json:"permissionGroupId" binding:"required"`
}

// UpdateEmployeeRequest defines the data allowed for updating an employee.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateEmployeeRequest struct {
	Name              *string `json:"name" binding:"omitempty,max=200"`
	PermissionGroupID *string `json:"permissionGroupId"`
	Active            *bool   `json:"active"`
}

// ListEmployeesParams defines query parameters for listing employees.
type ListEmployeesParams struct {
	Limit  int `form:"limit,default=20" binding:"min=0,max=200"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// EmployeeResponse defines the data returned for an employee.
type EmployeeResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PermissionGroupID string    `json:"permissionGroupId"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"`
	LastUpdatedAt     time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy     string    `json:"lastUpdatedBy"`
}

// ToEmployeeResponse converts a domain.Principal to EmployeeResponse DTO
func ToEmployeeResponse(p *domain.Principal) EmployeeResponse {
	return EmployeeResponse{
		ID:                p.ID,
		Name:              p.Name,
		Email:             p.Email,
		PermissionGroupID: p.PermissionGroupID,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		CreatedBy:         p.CreatedBy,
		LastUpdatedAt:     p.LastUpdatedAt,
		LastUpdatedBy:     p.LastUpdatedBy,
	}
}

// ListEmployeesResponse wraps the list of employees.
type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
}

// ToListEmployeesResponse converts a slice of principals.
func ToListEmployeesResponse(principals []domain.Principal) ListEmployeesResponse {
	out := make([]EmployeeResponse, len(principals))
	for i := range principals {
		out[i] = ToEmployeeResponse(&principals[i])
	}
	return ListEmployeesResponse{Employees: out}
}
