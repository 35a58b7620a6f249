package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/auth"
	positionmodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/position"
	usermodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/user"
	"github.com/frahmantamala/crm-auth/internal/position"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	return r.credential(ctx, "email = ?", email)
}

func (r *Repository) GetCredentialByUserID(ctx context.Context, userID string) (*auth.Credential, error) {
	return r.credential(ctx, "id = ?", userID)
}

func (r *Repository) credential(ctx context.Context, query string, arg interface{}) (*auth.Credential, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var row usermodel.Credential
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &auth.Credential{
		UserID:       row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
	}, nil
}

// GetUserByID loads the profile and, when position_id references an existing
// row, its position. A dangling reference leaves Position nil.
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var row usermodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u := &auth.User{
		ID:         row.ID,
		Email:      row.Email,
		FullName:   row.FullName,
		Role:       row.Role,
		PositionID: row.PositionID,
		IsActive:   row.IsActive,
	}

	if row.PositionID == nil {
		return u, nil
	}

	var p positionmodel.Position
	err = r.db.WithContext(ctx).Where("id = ?", *row.PositionID).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, err
	default:
		u.Position = position.FromDataModel(&p)
	}
	return u, nil
}

func (r *Repository) UpdatePositionID(ctx context.Context, userID string, positionID int64) error {
	return r.update(ctx, &usermodel.User{}, userID, "position_id", positionID)
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.update(ctx, &usermodel.Credential{}, userID, "password_hash", hash)
}

func (r *Repository) update(ctx context.Context, model interface{}, id, column string, value interface{}) error {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
