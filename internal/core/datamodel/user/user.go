package user

import "time"

type User struct {
	ID         string    `gorm:"primaryKey"`
	Email      string    `gorm:"column:email;uniqueIndex;not null"`
	FullName   string    `gorm:"column:full_name;not null"`
	Role       string    `gorm:"column:role;not null"`
	PositionID *int64    `gorm:"column:position_id"`
	IsActive   bool      `gorm:"column:is_active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Credential shares the user id space and is kept apart from profile data.
type Credential struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Credential) TableName() string {
	return "credentials"
}
