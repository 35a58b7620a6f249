package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/auth"
	"github.com/frahmantamala/crm-auth/internal/core/events"
	"github.com/frahmantamala/crm-auth/internal/position"
	"github.com/frahmantamala/crm-auth/pkg/logger"
	"github.com/google/uuid"
)

const DefaultRole = "agent"

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, actor *auth.User, id string) (*User, error)
	Provision(ctx context.Context, actor *auth.User, dto CreateUserDTO) (*User, error)
	AssignPosition(ctx context.Context, actor *auth.User, id string, positionID int64) (*User, error)
	Deactivate(ctx context.Context, actor *auth.User, id string) error
}

type Service struct {
	repo      Repository
	positions position.ServiceAPI
	hasher    auth.PasswordHasher
	policy    *auth.ABACPolicy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, positions position.ServiceAPI, hasher auth.PasswordHasher, policy *auth.ABACPolicy, publisher events.Publisher, lg *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		repo:      repo,
		positions: positions,
		hasher:    hasher,
		policy:    policy,
		publisher: publisher,
		logger:    lg,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id string) (*User, error) {
	if !s.policy.CanViewUser(actor, id) {
		return nil, internal.ErrInsufficientPermission
	}
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Provision creates an active user and its credential. Without an explicit
// position the role-derived default is assigned. Both the assigned position
// and the role's fallback position must be grantable by actor.
func (s *Service) Provision(ctx context.Context, actor *auth.User, dto CreateUserDTO) (*User, error) {
	if actor == nil {
		return nil, internal.ErrAuthRequired
	}
	return s.provision(ctx, actor, dto)
}

// Bootstrap provisions without an acting principal, for the seeder. It is
// not routed over HTTP.
func (s *Service) Bootstrap(ctx context.Context, dto CreateUserDTO) (*User, error) {
	return s.provision(ctx, nil, dto)
}

func (s *Service) provision(ctx context.Context, actor *auth.User, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := strings.ToLower(strings.TrimSpace(dto.Role))
	if role == "" {
		role = DefaultRole
	}

	var (
		p   *position.Position
		err error
	)
	if dto.PositionID != nil {
		p, err = s.positions.GetByID(ctx, *dto.PositionID)
	} else {
		p, err = s.positions.DefaultForRole(ctx, role)
	}
	if err != nil {
		return nil, err
	}
	if p.Synthetic {
		return nil, internal.NewInternalError("no positions are seeded", nil)
	}
	if actor != nil {
		if err := s.authorizeGrant(actor, p); err != nil {
			return nil, err
		}
		if err := s.authorizeGrant(actor, position.Synthetic(role)); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	positionID := p.ID
	u := &User{
		ID:         uuid.NewString(),
		Email:      strings.TrimSpace(dto.Email),
		FullName:   strings.TrimSpace(dto.FullName),
		Role:       role,
		PositionID: &positionID,
		IsActive:   true,
		Position:   p,
	}
	if err := s.repo.Create(ctx, u, hash); err != nil {
		return nil, err
	}

	s.log(ctx).Info("user provisioned", "user_id", u.ID, "position", p.Name, "actor_id", actorID(actor))
	_ = s.publisher.Publish(ctx, events.NewUserProvisioned(u.ID, u.Email, p.ID, actorID(actor)))
	return u, nil
}

func (s *Service) AssignPosition(ctx context.Context, actor *auth.User, id string, positionID int64) (*User, error) {
	if err := s.authorizeChange(actor, id, "edit"); err != nil {
		return nil, err
	}
	if err := (AssignPositionDTO{PositionID: positionID}).Validate(); err != nil {
		return nil, err
	}

	if err := s.authorizeTarget(ctx, actor, id); err != nil {
		return nil, err
	}

	p, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeGrant(actor, p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePosition(ctx, id, p.ID); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.NewPositionAssigned(id, p.ID, actorID(actor)))
	return s.load(ctx, id)
}

// Deactivate clears is_active. Users are never hard deleted.
func (s *Service) Deactivate(ctx context.Context, actor *auth.User, id string) error {
	if err := s.authorizeChange(actor, id, "delete"); err != nil {
		return err
	}
	if err := s.authorizeTarget(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.log(ctx).Info("user deactivated", "user_id", id, "actor_id", actorID(actor))
	_ = s.publisher.Publish(ctx, events.NewUserDeactivated(id, actorID(actor)))
	return nil
}

func (s *Service) authorizeChange(actor *auth.User, id, action string) error {
	err := s.policy.CanModifyUser(actor, id, action)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrSelfAction):
		return internal.NewForbiddenError("cannot change your own account", internal.ErrCodeInsufficientPermission)
	default:
		return internal.ErrInsufficientPermission
	}
}

func (s *Service) authorizeGrant(actor *auth.User, p *position.Position) error {
	err := s.policy.CanGrantPosition(actor, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrOutranked):
		return internal.NewForbiddenError("position outranks your own", internal.ErrCodeInsufficientPermission)
	default:
		return internal.ErrInsufficientPermission
	}
}

// authorizeTarget refuses changes to a user whose current position the actor
// could not grant, so nobody below admin can demote or deactivate an admin.
func (s *Service) authorizeTarget(ctx context.Context, actor *auth.User, id string) error {
	target, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.authorizeGrant(actor, auth.ResolvePosition(principalOf(target)))
}

func principalOf(u *User) *auth.User {
	return &auth.User{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		PositionID: u.PositionID,
		IsActive:   u.IsActive,
		Position:   u.Position,
	}
}

func actorID(actor *auth.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.FromOr(ctx, s.logger)
}
