package model

import "time"

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
)

// User represents a user in the system
type User struct {
	ID                   int        `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Photo                string     `json:"photo"`
	Role                 string     `json:"role"`
	PasswordHash         string     `json:"-"` // Do not expose password hash in JSON responses
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   *string    `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	Active               bool       `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ChangedPasswordAfter reports whether the user's password was changed
// after the given token issuance time. Comparison is at second
// granularity, matching the precision of JWT timestamps.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// SignupRequest is the payload for POST /users/signup
type SignupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// LoginRequest is the payload for POST /users/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest is the payload for POST /users/forgotPassword
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest is the payload for PATCH /users/resetPassword/:token
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// UpdatePasswordRequest is the payload for PATCH /users/updateMyPassword
type UpdatePasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdateMeRequest carries the fields a user may change about themselves.
// Password updates go through /updateMyPassword instead.
type UpdateMeRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Photo *string `json:"-"`
}

// AdminUpdateUserRequest allows admins to patch arbitrary profile fields.
type AdminUpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty" binding:"omitempty,oneof=user admin guide lead-guide"`
}
