package position

import (
	"context"
	"time"

	datamodel "github.com/frahmantamala/crm-auth/internal/core/datamodel/position"
)

const (
	LevelAgent       = 1
	LevelSeniorAgent = 2
	LevelTeamLead    = 3
	LevelManager     = 4
	LevelDirector    = 5
	LevelAdmin       = 6

	// ManagerLevel is the lowest level considered manager-or-above.
	ManagerLevel = LevelManager

	RoleAdmin = "admin"
)

// Permissions maps section -> action -> granted.
type Permissions map[string]map[string]bool

// Granted reports whether section.action is explicitly true.
func (p Permissions) Granted(section, action string) bool {
	if p == nil {
		return false
	}
	return p[section][action]
}

type Position struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Level       int         `json:"level"`
	IsAdmin     bool        `json:"is_admin"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Synthetic is set on positions built in memory because no stored
	// position could be found. They are never persisted.
	Synthetic bool `json:"-"`
}

// IsManagerOrAbove reports level >= ManagerLevel. Admins always qualify.
func (p *Position) IsManagerOrAbove() bool {
	if p == nil {
		return false
	}
	return p.IsAdmin || p.Level >= ManagerLevel
}

// RepositoryAPI is the persistence contract for positions.
type RepositoryAPI interface {
	List(ctx context.Context) ([]*Position, error)
	GetByID(ctx context.Context, id int64) (*Position, error)
	Highest(ctx context.Context) (*Position, error)
	Lowest(ctx context.Context) (*Position, error)
	UpsertByName(ctx context.Context, p *Position) (*Position, error)
}

func FromDataModel(m *datamodel.Position) *Position {
	if m == nil {
		return nil
	}
	return &Position{
		ID:          m.ID,
		Name:        m.Name,
		Level:       m.Level,
		IsAdmin:     m.IsAdmin,
		Permissions: Permissions(m.Permissions),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToDataModel(p *Position) *datamodel.Position {
	if p == nil {
		return nil
	}
	return &datamodel.Position{
		ID:          p.ID,
		Name:        p.Name,
		Level:       p.Level,
		IsAdmin:     p.IsAdmin,
		Permissions: datamodel.Permissions(p.Permissions),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
