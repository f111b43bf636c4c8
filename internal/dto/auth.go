package dto

import "time"

// LoginRequest represents the request body for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Employee  EmployeeResponse `json:"employee"`
}

// GoogleExchangeCodeRequest carries the authorization code returned by Google.
// State must echo the value issued by the login URL endpoint.
type GoogleExchangeCodeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

// GoogleLoginURLResponse is the consent page URL with its CSRF state.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// BootstrapStatusResponse tells the UI whether the first administrator still has to be created.
type BootstrapStatusResponse struct {
	Empty bool `json:"empty"`
}

// BootstrapRequest creates the first administrator.
type BootstrapRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=200"`
}
