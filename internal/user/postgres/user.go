package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/crm-auth/internal"
	positionmodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/position"
	usermodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/user"
	"github.com/frahmantamala/crm-auth/internal/position"
	"github.com/frahmantamala/crm-auth/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]*user.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var rows []usermodel.User
	if err := r.db.WithContext(ctx).Order("created_at ASC, email ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	positions, err := r.positionsByID(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*user.User, 0, len(rows))
	for i := range rows {
		u := user.FromDataModel(&rows[i])
		if u.PositionID != nil {
			u.Position = positions[*u.PositionID]
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *Repository) positionsByID(ctx context.Context) (map[int64]*position.Position, error) {
	var rows []positionmodel.Position
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*position.Position, len(rows))
	for i := range rows {
		out[rows[i].ID] = position.FromDataModel(&rows[i])
	}
	return out, nil
}

// GetByID returns nil, nil when the user does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*user.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var row usermodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u := user.FromDataModel(&row)
	if u.PositionID != nil {
		var p positionmodel.Position
		err := r.db.WithContext(ctx).Where("id = ?", *u.PositionID).First(&p).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			u.Position = position.FromDataModel(&p)
		}
	}
	return u, nil
}

func (r *Repository) Create(ctx context.Context, u *user.User, passwordHash string) error {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&usermodel.Credential{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.ErrEmailTaken
		}

		m := user.ToDataModel(u)
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := tx.Create(&usermodel.Credential{
			ID:           m.ID,
			Email:        m.Email,
			PasswordHash: passwordHash,
		}).Error; err != nil {
			return err
		}
		u.CreatedAt = m.CreatedAt
		u.UpdatedAt = m.UpdatedAt
		return nil
	})
	if isUniqueViolation(err) {
		return internal.ErrEmailTaken
	}
	return err
}

func (r *Repository) UpdatePosition(ctx context.Context, id string, positionID int64) error {
	return r.update(ctx, id, map[string]interface{}{"position_id": positionID})
}

func (r *Repository) Deactivate(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *Repository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&usermodel.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

const uniqueViolation = "23505"

// isUniqueViolation covers the race where two inserts pass the email check.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
