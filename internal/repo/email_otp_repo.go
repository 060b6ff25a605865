package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/credoauth/credo/internal/model"
	"github.com/credoauth/credo/internal/pkg/dbutil"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
)

type EmailOTPRepo struct {
	db *sql.DB
}

func NewEmailOTPRepo(db *sql.DB) *EmailOTPRepo {
	return &EmailOTPRepo{db: db}
}

// Upsert installs a fresh code for the email in one statement. Any prior
// code for the same email is overwritten and permanently invalid.
func (r *EmailOTPRepo) Upsert(ctx context.Context, item *model.EmailVerificationOTP) error {
	const sqlStr = `INSERT INTO email_verification_otps (email, otp, expires_at, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET otp = EXCLUDED.otp, expires_at = EXCLUDED.expires_at, mtime = EXCLUDED.mtime`
	_, err := r.db.ExecContext(ctx, sqlStr, item.Email, item.OTP, item.ExpiresAt, item.Ctime, item.Mtime)
	return err
}

// Consume deletes the row iff the code matches exactly and is unexpired.
// The compare-and-delete is a single statement, so a code can only ever be
// consumed once regardless of concurrent attempts.
func (r *EmailOTPRepo) Consume(ctx context.Context, email, code string, now int64) error {
	const sqlStr = `DELETE FROM email_verification_otps WHERE email = $1 AND otp = $2 AND expires_at > $3`
	result, err := r.db.ExecContext(ctx, sqlStr, email, code, now)
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

func (r *EmailOTPRepo) GetByEmail(ctx context.Context, email string) (*model.EmailVerificationOTP, error) {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildSelect("email_verification_otps", where, []string{"email", "otp", "expires_at", "ctime", "mtime"})
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
	var item model.EmailVerificationOTP
	if err := rows.Scan(&item.Email, &item.OTP, &item.ExpiresAt, &item.Ctime, &item.Mtime); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *EmailOTPRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	const sqlStr = `DELETE FROM email_verification_otps WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, sqlStr, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
