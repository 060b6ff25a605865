package model

// EmailVerificationOTP is the single live verification code for an email.
// Reissuing overwrites the row; successful verification deletes it.
type EmailVerificationOTP struct {
	Email     string `json:"email"`
	OTP       string `json:"otp"`
	ExpiresAt int64  `json:"expires_at"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}

// PasswordResetOTP holds the two-phase reset state for an email. Exactly
// one phase is live at a time: either the short code or the exchanged
// reset token. Starting a new flow overwrites the row and clears the
// token phase; consuming the token deletes the row.
type PasswordResetOTP struct {
	Email               string  `json:"email"`
	OTP                 *string `json:"otp"`
	ExpiresAt           *int64  `json:"expires_at"`
	ResetToken          *string `json:"reset_token"`
	ResetTokenExpiresAt *int64  `json:"reset_token_expires_at"`
	Ctime               int64   `json:"ctime"`
	Mtime               int64   `json:"mtime"`
}
