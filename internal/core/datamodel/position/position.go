package position

import "time"

// Permissions maps section -> action -> granted, stored as a JSON document.
type Permissions map[string]map[string]bool

type Position struct {
	ID          int64       `gorm:"primaryKey"`
	Name        string      `gorm:"column:name;uniqueIndex;not null"`
	Level       int         `gorm:"column:level;not null"`
	IsAdmin     bool        `gorm:"column:is_admin;not null"`
	Permissions Permissions `gorm:"column:permissions;type:jsonb;serializer:json"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
