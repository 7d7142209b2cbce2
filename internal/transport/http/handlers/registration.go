package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/damianS7/photogram-backend-sub000/internal/usecase"
)

// RegistrationHandler exposes endpoints for account registration and
// verification.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	lifecycle    *usecase.LifecycleService
}

func NewRegistrationHandler(registration *usecase.RegistrationService, lifecycle *usecase.LifecycleService) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		lifecycle:    lifecycle,
	}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/activate", h.Activate)
	r.POST("/verification/resend", h.ResendVerification)
}

// Register creates a pending account and triggers its first verification
// delivery.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet complexity requirements"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Account: NewAccountSummary(*account),
		Message: "verification email sent",
	})
}

// Activate redeems a verification token and activates the pending account.
func (h *RegistrationHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid activation payload"))
		return
	}

	account, err := h.lifecycle.Activate(c.Request.Context(), req.Token)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenNotFound, Status: http.StatusNotFound, Message: "verification token not found"},
			{Err: usecase.ErrTokenExpired, Status: http.StatusGone, Message: "verification token expired"},
			{Err: usecase.ErrTokenAlreadyUsed, Status: http.StatusConflict, Message: "verification token already used"},
			{Err: usecase.ErrAccountNotEligible, Status: http.StatusConflict, Message: "account cannot be activated"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to activate account")
		return
	}

	c.JSON(http.StatusOK, ActivateResponse{Account: NewAccountSummary(*account)})
}

// ResendVerification issues a fresh verification token for a pending account.
func (h *RegistrationHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resend payload"))
		return
	}

	if err := h.lifecycle.RequestVerification(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrAccountNotEligible, Status: http.StatusConflict, Message: "account is not awaiting verification"},
		}, http.StatusInternalServerError, "failed to resend verification")
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "verification email sent"})
}
