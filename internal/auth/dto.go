package auth

import (
	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate only checks presence. Format is not checked so a malformed email
// gets the same answer as an unknown one.
func (d LoginDTO) Validate() error {
	if d.Email == "" || d.Password == "" {
		return internal.ErrMissingCredentials
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refreshToken", d.RefreshToken).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("currentPassword", d.CurrentPassword).Required()
	v.Field("newPassword", d.NewPassword).
		Required().
		MinLength(validation.MinPasswordLength, internal.ErrCodeWeakPassword).
		MaxLength(validation.MaxPasswordLength)
	if err := v.Validate(); err != nil {
		return err
	}
	if d.CurrentPassword == d.NewPassword {
		return internal.NewValidationFieldError("newPassword", "newPassword must differ from currentPassword", internal.ErrCodeWeakPassword)
	}
	return nil
}
