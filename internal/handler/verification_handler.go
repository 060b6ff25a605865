package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/response"
	"github.com/credoauth/credo/internal/service"
)

type VerificationHandler struct {
	verify *service.EmailVerificationService
}

func NewVerificationHandler(verify *service.EmailVerificationService) *VerificationHandler {
	return &VerificationHandler{verify: verify}
}

type sendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *VerificationHandler) Send(c *gin.Context) {
	var req sendVerificationRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.verify.Send(c.Request.Context(), req.Email)
	switch err {
	case nil:
		response.Message(c, http.StatusOK, "Verification OTP sent to your email.")
	case appErr.ErrNotFound:
		unknownEmail(c)
	case appErr.ErrAlreadyVerified:
		response.Message(c, http.StatusBadRequest, "Email already verified.")
	default:
		handleError(c, err)
	}
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

func (h *VerificationHandler) Verify(c *gin.Context) {
	var req verifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.verify.Verify(c.Request.Context(), req.Email, req.OTP)
	switch err {
	case nil:
		response.Message(c, http.StatusOK, "Email verified successfully.")
	case appErr.ErrNotFound:
		unknownEmail(c)
	case appErr.ErrAlreadyVerified:
		response.Message(c, http.StatusBadRequest, "Email already verified.")
	case appErr.ErrInvalidOrExpired:
		response.Message(c, http.StatusBadRequest, "Invalid or expired OTP.")
	default:
		handleError(c, err)
	}
}
