package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/password"
	"github.com/credoauth/credo/internal/pkg/timeutil"
	"github.com/credoauth/credo/internal/repo"
)

const (
	resetCodeExpireMinutes  = 10
	resetTokenExpireMinutes = 15
)

// PasswordResetService drives the two-phase reset flow: a short mailed
// code is exchanged for a long random token, and only the token can
// authorize the password change. The brute-forceable surface is the
// code-verification call alone.
type PasswordResetService struct {
	users  *repo.UserRepo
	resets *repo.PasswordResetRepo
	sender EmailSender
	now    func() int64
}

func NewPasswordResetService(users *repo.UserRepo, resets *repo.PasswordResetRepo, sender EmailSender) *PasswordResetService {
	return &PasswordResetService{users: users, resets: resets, sender: sender, now: timeutil.NowUnix}
}

// Forgot issues a reset code for an existing user. Restarting the flow
// overwrites any prior row, including an already-exchanged reset token.
func (s *PasswordResetService) Forgot(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	code := newOTPCode()
	now := s.now()
	if err := s.resets.UpsertCode(ctx, user.Email, code, now+resetCodeExpireMinutes*60, now); err != nil {
		return err
	}
	body := fmt.Sprintf(
		"<h2>Password Reset OTP</h2><p>Your OTP is: <strong>%s</strong></p><p>This OTP is valid for %d minutes.</p>",
		code, resetCodeExpireMinutes)
	if err := s.sender.Send(user.Email, "Your Password Reset OTP", body); err != nil {
		logutil.GetLogger(ctx).Error("send reset mail failed", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

// VerifyOTP exchanges a valid code for a reset token. The exchange nulls
// the code in the same statement, so each code buys at most one token.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	normalized := normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, normalized); err != nil {
		return "", err
	}
	token := newResetToken()
	now := s.now()
	if err := s.resets.ExchangeCode(ctx, normalized, code, token, now+resetTokenExpireMinutes*60, now); err != nil {
		if err == appErr.ErrNotFound {
			return "", appErr.ErrInvalidOrExpired
		}
		return "", err
	}
	return token, nil
}

// SetNewPassword consumes the reset token and installs the new password
// hash. The token row is deleted before the update, so a token can never
// authorize two changes.
func (s *PasswordResetService) SetNewPassword(ctx context.Context, email, resetToken, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if err := s.resets.ConsumeToken(ctx, user.Email, resetToken, s.now()); err != nil {
		if err == appErr.ErrNotFound {
			return appErr.ErrInvalidOrExpired
		}
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, s.now())
}
