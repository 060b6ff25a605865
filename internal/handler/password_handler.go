package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/response"
	"github.com/credoauth/credo/internal/service"
)

type PasswordHandler struct {
	resets *service.PasswordResetService
}

func NewPasswordHandler(resets *service.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.resets.Forgot(c.Request.Context(), req.Email)
	switch err {
	case nil:
		response.Message(c, http.StatusOK, "OTP sent to your email.")
	case appErr.ErrNotFound:
		unknownEmail(c)
	default:
		handleError(c, err)
	}
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

func (h *PasswordHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.resets.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	switch err {
	case nil:
		response.JSON(c, http.StatusOK, gin.H{
			"message":     "OTP verified. Use the reset token to set a new password.",
			"reset_token": token,
		})
	case appErr.ErrNotFound:
		unknownEmail(c)
	case appErr.ErrInvalidOrExpired:
		response.Message(c, http.StatusBadRequest, "Invalid or expired OTP.")
	default:
		handleError(c, err)
	}
}

type setNewPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	ResetToken  string `json:"reset_token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (h *PasswordHandler) SetNewPassword(c *gin.Context) {
	var req setNewPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.resets.SetNewPassword(c.Request.Context(), req.Email, req.ResetToken, req.NewPassword)
	switch err {
	case nil:
		response.Message(c, http.StatusOK, "Password changed successfully.")
	case appErr.ErrNotFound:
		unknownEmail(c)
	case appErr.ErrInvalidOrExpired:
		response.Message(c, http.StatusBadRequest, "Invalid or expired reset token.")
	default:
		handleError(c, err)
	}
}
