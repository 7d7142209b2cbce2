package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damianS7/photogram-backend-sub000/internal/usecase"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
}

// Login verifies credentials and returns a session token. Unknown addresses
// and wrong passwords produce the same 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	session, account, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrBadCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
			{Err: usecase.ErrAccountSuspended, Status: http.StatusForbidden, Message: "account suspended"},
			{Err: usecase.ErrEmailNotVerified, Status: http.StatusForbidden, Message: "email not verified"},
		}, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   session,
		Account: NewAccountSummary(*account),
	})
}
