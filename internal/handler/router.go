package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credoauth/credo/internal/middleware"
)

type RouterDeps struct {
	Auth            *AuthHandler
	Verification    *VerificationHandler
	Password        *PasswordHandler
	JWTSecret       []byte
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/register", deps.Auth.Register)
	api.POST("/login", deps.Auth.Login)

	// OTP issue/consume endpoints sit behind the rate limiter: the 6-digit
	// code space is small enough to brute force inside its validity window
	// when these are unthrottled.
	otpGroup := api.Group("")
	otpGroup.Use(middleware.RateLimit(deps.RateLimitWindow))
	otpGroup.POST("/forgot-password", deps.Password.Forgot)
	otpGroup.POST("/verify-otp", deps.Password.VerifyOTP)
	otpGroup.POST("/set-new-password", deps.Password.SetNewPassword)
	otpGroup.POST("/email/verify/send", deps.Verification.Send)
	otpGroup.POST("/email/verify", deps.Verification.Verify)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/reset-password", deps.Auth.ChangePassword)
	authGroup.GET("/user", deps.Auth.Me)
}
