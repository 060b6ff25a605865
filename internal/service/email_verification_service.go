package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/credoauth/credo/internal/model"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/timeutil"
	"github.com/credoauth/credo/internal/repo"
)

const (
	verificationExpireMinutes = 10
)

type EmailVerificationService struct {
	users  *repo.UserRepo
	otps   *repo.EmailOTPRepo
	sender EmailSender
	now    func() int64
}

func NewEmailVerificationService(users *repo.UserRepo, otps *repo.EmailOTPRepo, sender EmailSender) *EmailVerificationService {
	return &EmailVerificationService{users: users, otps: otps, sender: sender, now: timeutil.NowUnix}
}

// Send issues a fresh verification code for the user. Any previously
// issued code for the email is overwritten and becomes invalid.
func (s *EmailVerificationService) Send(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified() {
		return appErr.ErrAlreadyVerified
	}
	return s.issue(ctx, user)
}

// Verify consumes the code and stamps email_verified_at. The consume is a
// single compare-and-delete, so the code is single-use even under
// concurrent verification attempts.
func (s *EmailVerificationService) Verify(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified() {
		return appErr.ErrAlreadyVerified
	}
	if err := s.otps.Consume(ctx, user.Email, code, s.now()); err != nil {
		if err == appErr.ErrNotFound {
			return appErr.ErrInvalidOrExpired
		}
		return err
	}
	return s.users.MarkEmailVerified(ctx, user.ID, s.now())
}

func (s *EmailVerificationService) issue(ctx context.Context, user *model.User) error {
	code := newOTPCode()
	now := s.now()
	item := &model.EmailVerificationOTP{
		Email:     user.Email,
		OTP:       code,
		ExpiresAt: now + verificationExpireMinutes*60,
		Ctime:     now,
		Mtime:     now,
	}
	if err := s.otps.Upsert(ctx, item); err != nil {
		return err
	}
	body := fmt.Sprintf(
		"<h2>Email Verification</h2><p>Hello %s,</p><p>Your email verification OTP is: <strong>%s</strong></p><p>This OTP is valid for %d minutes.</p><p>If you didn't request this verification, please ignore this email.</p>",
		user.Name, code, verificationExpireMinutes)
	// Delivery failure does not fail the operation; the code is already
	// live and the caller can request a resend.
	if err := s.sender.Send(user.Email, "Verify Your Email Address", body); err != nil {
		logutil.GetLogger(ctx).Error("send verification mail failed", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

// sendCode is the fire-and-forget variant used on registration.
func (s *EmailVerificationService) sendCode(ctx context.Context, user *model.User) {
	if err := s.issue(ctx, user); err != nil {
		logutil.GetLogger(ctx).Error("issue verification code failed", zap.String("email", user.Email), zap.Error(err))
	}
}
