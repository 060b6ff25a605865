package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/credoauth/credo/internal/pkg/timeutil"
	"github.com/credoauth/credo/internal/repo"
)

// OTPCleanupJob sweeps expired OTP rows. Expiry is enforced lazily at
// consume time, so this only keeps the tables from accumulating stale
// rows; correctness does not depend on it.
type OTPCleanupJob struct {
	emailOTPs *repo.EmailOTPRepo
	resets    *repo.PasswordResetRepo
}

func NewOTPCleanupJob(emailOTPs *repo.EmailOTPRepo, resets *repo.PasswordResetRepo) *OTPCleanupJob {
	return &OTPCleanupJob{emailOTPs: emailOTPs, resets: resets}
}

func (j *OTPCleanupJob) Name() string {
	return "otp_cleanup"
}

func (j *OTPCleanupJob) Run(ctx context.Context) error {
	now := timeutil.NowUnix()
	verifyDeleted, err := j.emailOTPs.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}
	resetDeleted, err := j.resets.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}
	if verifyDeleted > 0 || resetDeleted > 0 {
		logutil.GetLogger(ctx).Info("purged expired otps",
			zap.Int64("verification", verifyDeleted),
			zap.Int64("password_reset", resetDeleted),
		)
	}
	return nil
}
