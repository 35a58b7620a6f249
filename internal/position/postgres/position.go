package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/crm-auth/internal"
	datamodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/position"
	"github.com/frahmantamala/crm-auth/internal/position"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]*position.Position, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var rows []datamodel.Position
	if err := r.db.WithContext(ctx).Order("level ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*position.Position, 0, len(rows))
	for i := range rows {
		out = append(out, position.FromDataModel(&rows[i]))
	}
	return out, nil
}

// GetByID returns nil, nil when no row matches.
func (r *Repository) GetByID(ctx context.Context, id int64) (*position.Position, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", id)
	})
}

func (r *Repository) Highest(ctx context.Context) (*position.Position, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("level DESC, id ASC")
	})
}

func (r *Repository) Lowest(ctx context.Context) (*position.Position, error) {
	return r.first(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("level ASC, id ASC")
	})
}

// UpsertByName inserts p or refreshes level, admin flag and permissions of
// the row that already carries its name.
func (r *Repository) UpsertByName(ctx context.Context, p *position.Position) (*position.Position, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	m := position.ToDataModel(p)
	m.ID = 0
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "is_admin", "permissions", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}

	var stored datamodel.Position
	if err := r.db.WithContext(ctx).Where("name = ?", p.Name).First(&stored).Error; err != nil {
		return nil, err
	}
	return position.FromDataModel(&stored), nil
}

func (r *Repository) first(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (*position.Position, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var row datamodel.Position
	err := r.db.WithContext(ctx).Scopes(scope).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return position.FromDataModel(&row), nil
}
