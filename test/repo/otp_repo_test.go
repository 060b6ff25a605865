package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/credoauth/credo/internal/model"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/repo"
	"github.com/credoauth/credo/test/testutil"
)

func newVerificationOTP(email, code string, expiresAt, now int64) *model.EmailVerificationOTP {
	return &model.EmailVerificationOTP{
		Email:     email,
		OTP:       code,
		ExpiresAt: expiresAt,
		Ctime:     now,
		Mtime:     now,
	}
}

func TestEmailOTP_ConsumeSingleUse(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	otps := repo.NewEmailOTPRepo(conn)
	ctx := context.Background()

	now := int64(1000)
	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("a@x.com", "123456", now+600, now)))

	require.NoError(t, otps.Consume(ctx, "a@x.com", "123456", now))
	require.Equal(t, appErr.ErrNotFound, otps.Consume(ctx, "a@x.com", "123456", now))
}

func TestEmailOTP_ConsumeWrongCode(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	otps := repo.NewEmailOTPRepo(conn)
	ctx := context.Background()

	now := int64(1000)
	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("a@x.com", "123456", now+600, now)))

	require.Equal(t, appErr.ErrNotFound, otps.Consume(ctx, "a@x.com", "654321", now))
	// the real code is still live after a failed guess
	require.NoError(t, otps.Consume(ctx, "a@x.com", "123456", now))
}

func TestEmailOTP_ReissueInvalidatesPriorCode(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	otps := repo.NewEmailOTPRepo(conn)
	ctx := context.Background()

	now := int64(1000)
	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("a@x.com", "111111", now+600, now)))
	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("a@x.com", "222222", now+600, now)))

	require.Equal(t, appErr.ErrNotFound, otps.Consume(ctx, "a@x.com", "111111", now))
	require.NoError(t, otps.Consume(ctx, "a@x.com", "222222", now))
}

func TestEmailOTP_ExpiryBoundary(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	otps := repo.NewEmailOTPRepo(conn)
	ctx := context.Background()

	expiresAt := int64(2000)
	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("a@x.com", "123456", expiresAt, 1000)))

	// expires_at == now and past both reject; strictly before accepts
	require.Equal(t, appErr.ErrNotFound, otps.Consume(ctx, "a@x.com", "123456", expiresAt))
	require.Equal(t, appErr.ErrNotFound, otps.Consume(ctx, "a@x.com", "123456", expiresAt+1))
	require.NoError(t, otps.Consume(ctx, "a@x.com", "123456", expiresAt-1))
}

func TestEmailOTP_DeleteExpired(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	otps := repo.NewEmailOTPRepo(conn)
	ctx := context.Background()

	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("stale@x.com", "111111", 500, 100)))
	require.NoError(t, otps.Upsert(ctx, newVerificationOTP("live@x.com", "222222", 2000, 100)))

	deleted, err := otps.DeleteExpired(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = otps.GetByEmail(ctx, "stale@x.com")
	require.Equal(t, appErr.ErrNotFound, err)
	_, err = otps.GetByEmail(ctx, "live@x.com")
	require.NoError(t, err)
}

func TestPasswordReset_CodeExchangeAndTokenConsume(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	resets := repo.NewPasswordResetRepo(conn)
	ctx := context.Background()

	now := int64(1000)
	require.NoError(t, resets.UpsertCode(ctx, "a@x.com", "123456", now+600, now))
	require.NoError(t, resets.ExchangeCode(ctx, "a@x.com", "123456", "token-a", now+900, now))

	// the code died in the exchange
	require.Equal(t, appErr.ErrNotFound, resets.ExchangeCode(ctx, "a@x.com", "123456", "token-b", now+900, now))

	require.NoError(t, resets.ConsumeToken(ctx, "a@x.com", "token-a", now))
	// token is single-use: the row is gone
	require.Equal(t, appErr.ErrNotFound, resets.ConsumeToken(ctx, "a@x.com", "token-a", now))
}

func TestPasswordReset_UpsertClearsTokenPhase(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	resets := repo.NewPasswordResetRepo(conn)
	ctx := context.Background()

	now := int64(1000)
	require.NoError(t, resets.UpsertCode(ctx, "a@x.com", "123456", now+600, now))
	require.NoError(t, resets.ExchangeCode(ctx, "a@x.com", "123456", "token-a", now+900, now))

	// restarting the flow discards the issued token
	require.NoError(t, resets.UpsertCode(ctx, "a@x.com", "654321", now+600, now))
	require.Equal(t, appErr.ErrNotFound, resets.ConsumeToken(ctx, "a@x.com", "token-a", now))

	item, err := resets.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, item.OTP)
	require.Equal(t, "654321", *item.OTP)
	require.Nil(t, item.ResetToken)
	require.Nil(t, item.ResetTokenExpiresAt)
}

func TestPasswordReset_ExchangeExpiryBoundary(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	resets := repo.NewPasswordResetRepo(conn)
	ctx := context.Background()

	expiresAt := int64(2000)
	require.NoError(t, resets.UpsertCode(ctx, "a@x.com", "123456", expiresAt, 1000))

	require.Equal(t, appErr.ErrNotFound, resets.ExchangeCode(ctx, "a@x.com", "123456", "token-a", expiresAt+900, expiresAt))
	require.NoError(t, resets.ExchangeCode(ctx, "a@x.com", "123456", "token-a", expiresAt+900, expiresAt-1))
}

func TestPasswordReset_TokenExpiryBoundary(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	resets := repo.NewPasswordResetRepo(conn)
	ctx := context.Background()

	now := int64(1000)
	tokenExpiresAt := int64(1900)
	require.NoError(t, resets.UpsertCode(ctx, "a@x.com", "123456", now+600, now))
	require.NoError(t, resets.ExchangeCode(ctx, "a@x.com", "123456", "token-a", tokenExpiresAt, now))

	require.Equal(t, appErr.ErrNotFound, resets.ConsumeToken(ctx, "a@x.com", "token-a", tokenExpiresAt))
	require.NoError(t, resets.ConsumeToken(ctx, "a@x.com", "token-a", tokenExpiresAt-1))
}

func TestPasswordReset_DeleteExpiredPerPhase(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	resets := repo.NewPasswordResetRepo(conn)
	ctx := context.Background()

	require.NoError(t, resets.UpsertCode(ctx, "stale-code@x.com", "111111", 500, 100))
	require.NoError(t, resets.UpsertCode(ctx, "live-code@x.com", "222222", 2000, 100))
	require.NoError(t, resets.UpsertCode(ctx, "stale-token@x.com", "333333", 2000, 100))
	require.NoError(t, resets.ExchangeCode(ctx, "stale-token@x.com", "333333", "token-c", 900, 100))

	deleted, err := resets.DeleteExpired(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	_, err = resets.GetByEmail(ctx, "live-code@x.com")
	require.NoError(t, err)
}
