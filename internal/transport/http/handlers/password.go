package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/damianS7/photogram-backend-sub000/internal/transport/http/middleware"
	"github.com/damianS7/photogram-backend-sub000/internal/usecase"
)

// PasswordHandler exposes password change and reset endpoints.
type PasswordHandler struct {
	credentials *usecase.CredentialService
	log         *zap.Logger
}

func NewPasswordHandler(credentials *usecase.CredentialService, log *zap.Logger) *PasswordHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordHandler{
		credentials: credentials,
		log:         log,
	}
}

// ChangePassword rotates the password of the authenticated account.
func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	accountID := middleware.AccountID(c)
	if accountID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid change password payload"))
		return
	}

	err := h.credentials.ChangePassword(c.Request.Context(), accountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrPasswordMismatch, Status: http.StatusForbidden, Message: "current password is incorrect"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet complexity requirements"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// ResetPassword starts the reset flow. The response is the same whether or
// not the address belongs to an account, so the endpoint cannot be used to
// probe which emails exist.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	if err := h.credentials.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if !errors.Is(err, usecase.ErrAccountNotFound) {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to request password reset"))
			return
		}
		h.log.Debug("password reset requested for unknown email")
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "if the address is registered, a reset email is on its way"})
}

// ConfirmReset completes the reset flow with the delivered token.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset confirmation payload"))
		return
	}

	err := h.credentials.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenNotFound, Status: http.StatusNotFound, Message: "reset token not found"},
			{Err: usecase.ErrTokenExpired, Status: http.StatusGone, Message: "reset token expired"},
			{Err: usecase.ErrTokenAlreadyUsed, Status: http.StatusConflict, Message: "reset token already used"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusUnprocessableEntity, Message: "password does not meet complexity requirements"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}
