package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/crm-auth/internal/position"
	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated principal: the profile row plus its stored
// position. Position is nil when position_id is null or dangling.
type User struct {
	ID         string             `json:"id"`
	Email      string             `json:"email"`
	FullName   string             `json:"fullName"`
	Role       string             `json:"role"`
	PositionID *int64             `json:"positionId"`
	IsActive   bool               `json:"isActive"`
	Position   *position.Position `json:"position"`
}

// UserView is the public shape returned by login and /me.
type UserView struct {
	ID       string             `json:"id"`
	Email    string             `json:"email"`
	FullName string             `json:"fullName"`
	Position *position.Position `json:"position"`
}

// View renders the user with its resolved position.
func (u *User) View() UserView {
	return UserView{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Position: ResolvePosition(u),
	}
}

// Credential is the login secret, stored apart from the profile.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
}

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
}

// TokenGenerator creates and verifies signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Repository reads credentials and profiles. Lookups return nil, nil when
// nothing matches.
type Repository interface {
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	GetCredentialByUserID(ctx context.Context, userID string) (*Credential, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	UpdatePositionID(ctx context.Context, userID string, positionID int64) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// PositionProvider derives the default position for a legacy role.
type PositionProvider interface {
	DefaultForRole(ctx context.Context, role string) (*position.Position, error)
}

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrEmptyPassword  = errors.New("password is empty")
)
