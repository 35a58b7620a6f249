package user

import (
	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	PositionID *int64 `json:"positionId,omitempty"`
}

type AssignPositionDTO struct {
	PositionID int64 `json:"positionId"`
}

func (d CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().MaxLength(254).Email()
	v.Field("fullName", d.FullName).Required().MaxLength(200)
	v.Field("password", d.Password).
		Required().
		MinLength(validation.MinPasswordLength, internal.ErrCodeWeakPassword).
		MaxLength(validation.MaxPasswordLength)
	v.Field("role", d.Role).MaxLength(50)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d AssignPositionDTO) Validate() error {
	if d.PositionID <= 0 {
		return internal.NewValidationFieldError("positionId", "positionId is required", internal.ErrCodeMissingField)
	}
	return nil
}
