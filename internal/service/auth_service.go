package service

import (
	"context"
	"strings"
	"time"

	"github.com/credoauth/credo/internal/model"
	appErr "github.com/credoauth/credo/internal/pkg/errors"
	"github.com/credoauth/credo/internal/pkg/jwt"
	"github.com/credoauth/credo/internal/pkg/password"
	"github.com/credoauth/credo/internal/pkg/timeutil"
	"github.com/credoauth/credo/internal/repo"
)

type AuthService struct {
	users     *repo.UserRepo
	verify    *EmailVerificationService
	jwtSecret []byte
	jwtTTL    time.Duration
	now       func() int64
}

func NewAuthService(users *repo.UserRepo, verify *EmailVerificationService, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		verify:    verify,
		jwtSecret: secret,
		jwtTTL:    ttl,
		now:       timeutil.NowUnix,
	}
}

// Register creates the user, mints a bearer token and kicks off email
// verification. The GetByEmail pre-check supplies the duplicate answer in
// the common case; the unique index in UserRepo.Create is what actually
// guarantees at most one user per email under concurrent registration.
func (s *AuthService) Register(ctx context.Context, name, email, plainPassword string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", appErr.ErrConflict
	} else if err != appErr.ErrNotFound {
		return nil, "", err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	now := s.now()
	user := &model.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	s.verify.sendCode(ctx, user)
	return user, token, nil
}

// Login fails the same way for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", appErr.ErrInvalidCredentials
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrInvalidCredentials
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword is the authenticated password change: the caller proves
// knowledge of the current password before the hash is replaced.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := password.Compare(user.PasswordHash, oldPassword); err != nil {
		return appErr.ErrWrongOldPassword
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, s.now())
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
