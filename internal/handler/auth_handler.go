package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/response"
	"github.com/credoauth/credo/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err == appErr.ErrConflict {
		response.Message(c, http.StatusConflict, "User already exists with this email.")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
		"message":      "Registration successful. Please verify your email address.",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err == appErr.ErrInvalidCredentials {
		response.Message(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.auth.ChangePassword(c.Request.Context(), getUserID(c), req.OldPassword, req.NewPassword)
	if err == appErr.ErrWrongOldPassword {
		response.Message(c, http.StatusBadRequest, "Old password is incorrect.")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Password updated successfully.")
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, appErr.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user)
}
