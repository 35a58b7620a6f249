package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/core/events"
	"github.com/frahmantamala/crm-auth/pkg/logger"
)

// ServiceAPI is what the HTTP layer needs from the auth service.
type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	Authorize(ctx context.Context, tokenString string) (*User, error)
	ChangePassword(ctx context.Context, u *User, dto ChangePasswordDTO) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo      Repository
	positions PositionProvider
	tokens    TokenGenerator
	hasher    PasswordHasher
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, positions PositionProvider, tokens TokenGenerator, hasher PasswordHasher, publisher events.Publisher, lg *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		repo:      repo,
		positions: positions,
		tokens:    tokens,
		hasher:    hasher,
		publisher: publisher,
		logger:    lg,
	}
}

// Authenticate validates credentials and returns the profile with a token
// pair. Every credential failure collapses into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cred, err := s.repo.GetCredentialByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load credentials", err)
	}
	if cred == nil {
		return nil, s.loginFailed(ctx, dto.Email, "unknown_email")
	}

	if !s.hasher.Verify(cred.PasswordHash, dto.Password) {
		if cred.PasswordHash == "" {
			s.log(ctx).Error("credential has no password hash",
				"code", internal.ErrCodeDataIntegrity, "user_id", cred.UserID)
		}
		return nil, s.loginFailed(ctx, dto.Email, "wrong_password")
	}

	user, err := s.repo.GetUserByID(ctx, cred.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if user == nil {
		s.log(ctx).Error("credential without profile",
			"code", internal.ErrCodeDataIntegrity, "user_id", cred.UserID)
		return nil, s.loginFailed(ctx, dto.Email, "profile_missing")
	}
	if !user.IsActive {
		return nil, s.loginFailed(ctx, dto.Email, "inactive")
	}

	if user.Position == nil {
		if err := s.repairPosition(ctx, user); err != nil {
			return nil, err
		}
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.NewLoginSucceeded(user.ID, user.Email))
	s.log(ctx).Info("login succeeded", "user_id", user.ID)

	return &LoginResult{
		User:         user.View(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// repairPosition assigns the role-derived default to a user whose
// position_id is null or dangling and persists it. A synthetic fallback is
// attached in memory only since it has no row to reference.
func (s *Service) repairPosition(ctx context.Context, user *User) error {
	p, err := s.positions.DefaultForRole(ctx, user.Role)
	if err != nil {
		return internal.NewInternalError("failed to resolve default position", err)
	}

	previous := user.PositionID
	user.Position = p
	if p.Synthetic {
		return nil
	}

	if err := s.repo.UpdatePositionID(ctx, user.ID, p.ID); err != nil {
		s.log(ctx).Error("failed to persist repaired position",
			"user_id", user.ID, "position_id", p.ID, "error", err)
		return nil
	}
	id := p.ID
	user.PositionID = &id

	s.log(ctx).Warn("repaired user position",
		"user_id", user.ID, "role", user.Role, "position", p.Name)
	_ = s.publisher.Publish(ctx, events.NewPositionRepaired(user.ID, previous, p.ID))
	return nil
}

func (s *Service) loginFailed(ctx context.Context, email, reason string) error {
	s.log(ctx).Warn("login failed", "reason", reason)
	_ = s.publisher.Publish(ctx, events.NewLoginFailed(email, reason))
	return internal.ErrInvalidCredentials
}

func (s *Service) issue(user *User) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens rotates the pair for a valid refresh token whose principal
// still exists and is active.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if err := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); err != nil {
		return AuthTokens{}, err
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.log(ctx).Warn("refresh token rejected", "error", err)
		return AuthTokens{}, internal.ErrInvalidToken.WithCause(err)
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to load profile", err)
	}
	if user == nil || !user.IsActive {
		s.log(ctx).Warn("refresh token for unavailable user", "user_id", claims.UserID)
		return AuthTokens{}, internal.ErrInvalidToken
	}

	tokens, err := s.issue(user)
	if err != nil {
		return AuthTokens{}, err
	}

	_ = s.publisher.Publish(ctx, events.NewTokenRefreshed(user.ID))
	return tokens, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	return claims, nil
}

// Authorize turns an access token into the current principal. It never
// writes to the store.
func (s *Service) Authorize(ctx context.Context, tokenString string) (*User, error) {
	if tokenString == "" {
		return nil, internal.ErrAuthRequired
	}

	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	if user == nil {
		return nil, internal.ErrUserGone
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, u *User, dto ChangePasswordDTO) error {
	if u == nil {
		return internal.ErrAuthRequired
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	cred, err := s.repo.GetCredentialByUserID(ctx, u.ID)
	if err != nil {
		return internal.NewInternalError("failed to load credentials", err)
	}
	if cred == nil || !s.hasher.Verify(cred.PasswordHash, dto.CurrentPassword) {
		return internal.NewValidationFieldError("currentPassword", "current password is incorrect", internal.ErrCodeInvalidCredentials)
	}

	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			return internal.NewValidationFieldError("newPassword", "newPassword is required", internal.ErrCodeMissingField)
		}
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	s.log(ctx).Info("password changed", "user_id", u.ID)
	_ = s.publisher.Publish(ctx, events.NewPasswordChanged(u.ID))
	return nil
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.FromOr(ctx, s.logger)
}
