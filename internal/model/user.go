package model

type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PasswordHash    string `json:"-"`
	EmailVerifiedAt *int64 `json:"email_verified_at"`
	Ctime           int64  `json:"created_at"`
	Mtime           int64  `json:"updated_at"`
}

func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
