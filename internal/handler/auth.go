package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unicorn-hrms/backend/internal/model"
)

// AuthSession is what the auth endpoints need from the session manager.
type AuthSession interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*model.LoginResponse, error)
	Revoke(ctx context.Context, userID int64) error
	ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error
}

type AuthHandler struct {
	svc AuthSession
}

func NewAuthHandler(svc AuthSession) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new account
// @Description Creates the account, assigns the default Employee role and opens a session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration fields"
// @Success 201 {object} model.Response
// @Failure 400 {object} model.Response
// @Failure 409 {object} model.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result, "registration successful")
}

// Login godoc
// @Summary Login with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.Response
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result, "login successful")
}

// Refresh godoc
// @Summary Exchange an access/refresh pair for a new one
// @Description Rotates the refresh token; the presented token is spent whether or not the exchange succeeds.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshTokenRequest true "Current token pair"
// @Success 200 {object} model.Response
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/refresh-token [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.svc.Refresh(c.Request.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result, "token refreshed successfully")
}

// Revoke godoc
// @Summary Revoke the caller's refresh token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Response
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/revoke-token [post]
func (h *AuthHandler) Revoke(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.FailureResponse("unauthorized"))
		return
	}

	if err := h.svc.Revoke(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, true, "token revoked successfully")
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Description Verifies the current password; on success the stored refresh token is cleared.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Current and new passwords"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.Response
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.FailureResponse("unauthorized"))
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), user.ID, req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, true, "password changed successfully")
}

// RequestPasswordReset godoc
// @Summary Request a password reset
// @Description Always acknowledges with the same message, whether or not the email exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RequestPasswordResetRequest true "Account email"
// @Success 200 {object} model.Response
// @Router /api/v1/auth/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req model.RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, true, "if the email exists, a password reset link has been sent")
}

// ResetPassword godoc
// @Summary Reset a password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ResetPasswordRequest true "Email, new password and reset token"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.Response
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, true, "password reset successfully")
}

// Me godoc
// @Summary Get the caller's identity
// @Description Echoes the claims of the validated access token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Response
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.FailureResponse("unauthorized"))
		return
	}
	respondOK(c, http.StatusOK, model.MeResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	}, "")
}
