package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/damianS7/photogram-backend-sub000/internal/core/domain"
	"github.com/damianS7/photogram-backend-sub000/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request's trace ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary is the outward view of an account. The password digest never
// leaves the service.
type AccountSummary struct {
	ID         string               `json:"id"`
	CustomerID string               `json:"customer_id"`
	Email      string               `json:"email"`
	Status     domain.AccountStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewAccountSummary maps a domain account to its API representation.
func NewAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:         account.ID,
		CustomerID: account.CustomerID,
		Email:      account.Email,
		Status:     account.Status,
		CreatedAt:  account.CreatedAt,
	}
}

// RegistrationRequest defines the payload for opening an account.
type RegistrationRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

// RegistrationResponse is returned after a successful registration.
type RegistrationResponse struct {
	Account AccountSummary `json:"account"`
	Message string         `json:"message"`
}

// ActivateRequest carries the raw verification token back to the service.
type ActivateRequest struct {
	Token string `json:"token" binding:"required"`
}

// ActivateResponse is returned after a successful activation.
type ActivateResponse struct {
	Account AccountSummary `json:"account"`
}

// ResendVerificationRequest asks for a fresh verification token.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	Token   string         `json:"token"`
	Account AccountSummary `json:"account"`
}

// ChangePasswordRequest rotates the password of an authenticated account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ResetPasswordRequest starts the password reset flow.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmResetRequest completes the password reset flow.
type ConfirmResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
