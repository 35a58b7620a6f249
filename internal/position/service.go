package position

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/crm-auth/internal"
)

type ServiceAPI interface {
	ListPositions(ctx context.Context) ([]*Position, error)
	GetByID(ctx context.Context, id int64) (*Position, error)
	DefaultForRole(ctx context.Context, role string) (*Position, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ListPositions returns every stored position ordered by level ascending.
func (s *Service) ListPositions(ctx context.Context) ([]*Position, error) {
	positions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if positions == nil {
		positions = []*Position{}
	}
	return positions, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Position, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get position %d: %w", id, err)
	}
	if p == nil {
		return nil, internal.ErrPositionNotFound
	}
	return p, nil
}

// DefaultForRole picks the highest stored position for admins and the lowest
// for everyone else. With no stored positions at all it falls back to the
// synthetic seed tier and logs the data integrity problem.
func (s *Service) DefaultForRole(ctx context.Context, role string) (*Position, error) {
	var (
		p   *Position
		err error
	)
	if IsAdminRole(role) {
		p, err = s.repo.Highest(ctx)
	} else {
		p, err = s.repo.Lowest(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("default position for role %q: %w", role, err)
	}
	if p != nil {
		return p, nil
	}

	s.logger.Error("positions table is empty, using synthetic position",
		"code", internal.ErrCodeDataIntegrity,
		"role", role,
	)
	return Synthetic(role), nil
}

// Seed upserts the standard tiers by name and returns the stored rows.
func (s *Service) Seed(ctx context.Context) ([]*Position, error) {
	seeds := Seeds()
	out := make([]*Position, 0, len(seeds))
	for _, seed := range seeds {
		stored, err := s.repo.UpsertByName(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("seed position %s: %w", seed.Name, err)
		}
		s.logger.Info("position seeded", "name", stored.Name, "id", stored.ID, "level", stored.Level)
		out = append(out, stored)
	}
	return out, nil
}
