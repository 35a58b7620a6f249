package user

import (
	"context"
	"time"

	usermodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/user"
	"github.com/frahmantamala/crm-auth/internal/position"
)

// User is the administrative view of a profile.
type User struct {
	ID         string             `json:"id"`
	Email      string             `json:"email"`
	FullName   string             `json:"fullName"`
	Role       string             `json:"role"`
	PositionID *int64             `json:"positionId"`
	IsActive   bool               `json:"isActive"`
	Position   *position.Position `json:"position"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type Repository interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Create writes the profile and its credential in one transaction.
	Create(ctx context.Context, u *User, passwordHash string) error
	UpdatePosition(ctx context.Context, id string, positionID int64) error
	Deactivate(ctx context.Context, id string) error
}

// BackfillResult counts rows repaired per role bucket.
type BackfillResult struct {
	Admins int64 `json:"admins"`
	Others int64 `json:"others"`
}

func (r BackfillResult) Total() int64 {
	return r.Admins + r.Others
}

type BackfillRepository interface {
	BackfillPositions(ctx context.Context, adminPositionID, defaultPositionID int64) (BackfillResult, error)
}

func ToDataModel(u *User) *usermodel.User {
	return &usermodel.User{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		PositionID: u.PositionID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func FromDataModel(m *usermodel.User) *User {
	return &User{
		ID:         m.ID,
		Email:      m.Email,
		FullName:   m.FullName,
		Role:       m.Role,
		PositionID: m.PositionID,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
