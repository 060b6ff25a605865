package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/credoauth/credo/internal/model"
	"github.com/credoauth/credo/internal/pkg/dbutil"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
)

type PasswordResetRepo struct {
	db *sql.DB
}

func NewPasswordResetRepo(db *sql.DB) *PasswordResetRepo {
	return &PasswordResetRepo{db: db}
}

// UpsertCode starts (or restarts) the reset flow for an email. The token
// phase is always cleared, so a previously issued reset token dies the
// moment a new forgot-password request comes in.
func (r *PasswordResetRepo) UpsertCode(ctx context.Context, email, code string, expiresAt, now int64) error {
	const sqlStr = `INSERT INTO password_reset_otps (email, otp, expires_at, reset_token, reset_token_expires_at, ctime, mtime)
		VALUES ($1, $2, $3, NULL, NULL, $4, $4)
		ON CONFLICT (email) DO UPDATE SET otp = EXCLUDED.otp, expires_at = EXCLUDED.expires_at,
			reset_token = NULL, reset_token_expires_at = NULL, mtime = EXCLUDED.mtime`
	_, err := r.db.ExecContext(ctx, sqlStr, email, code, expiresAt, now)
	return err
}

// ExchangeCode flips the row from the code phase into the token phase in a
// single conditional update: the code must match exactly and be unexpired.
// On success the code is nulled so it can never be verified again.
func (r *PasswordResetRepo) ExchangeCode(ctx context.Context, email, code, resetToken string, tokenExpiresAt, now int64) error {
	const sqlStr = `UPDATE password_reset_otps
		SET otp = NULL, expires_at = NULL, reset_token = $1, reset_token_expires_at = $2, mtime = $3
		WHERE email = $4 AND otp = $5 AND expires_at > $6`
	result, err := r.db.ExecContext(ctx, sqlStr, resetToken, tokenExpiresAt, now, email, code, now)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ConsumeToken deletes the row iff the reset token matches exactly and is
// unexpired, making the token single-use.
func (r *PasswordResetRepo) ConsumeToken(ctx context.Context, email, resetToken string, now int64) error {
	const sqlStr = `DELETE FROM password_reset_otps WHERE email = $1 AND reset_token = $2 AND reset_token_expires_at > $3`
	result, err := r.db.ExecContext(ctx, sqlStr, email, resetToken, now)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *PasswordResetRepo) GetByEmail(ctx context.Context, email string) (*model.PasswordResetOTP, error) {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildSelect("password_reset_otps", where,
		[]string{"email", "otp", "expires_at", "reset_token", "reset_token_expires_at", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var item model.PasswordResetOTP
	if err := rows.Scan(&item.Email, &item.OTP, &item.ExpiresAt, &item.ResetToken, &item.ResetTokenExpiresAt, &item.Ctime, &item.Mtime); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteExpired removes rows whose live phase has lapsed. Expiry is
// otherwise only checked lazily at consume time.
func (r *PasswordResetRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	const sqlStr = `DELETE FROM password_reset_otps
		WHERE (reset_token IS NULL AND (expires_at IS NULL OR expires_at <= $1))
		   OR (reset_token IS NOT NULL AND reset_token_expires_at <= $1)`
	result, err := r.db.ExecContext(ctx, sqlStr, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
