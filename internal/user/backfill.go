package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/crm-auth/internal"
	"github.com/frahmantamala/crm-auth/internal/position"
)

// Backfiller assigns role-derived positions to every user whose position_id
// is null or dangling. Running it again after success changes nothing.
type Backfiller struct {
	repo      BackfillRepository
	positions position.ServiceAPI
	logger    *slog.Logger
}

func NewBackfiller(repo BackfillRepository, positions position.ServiceAPI, lg *slog.Logger) *Backfiller {
	if lg == nil {
		lg = slog.Default()
	}
	return &Backfiller{repo: repo, positions: positions, logger: lg}
}

func (b *Backfiller) Run(ctx context.Context) (BackfillResult, error) {
	admin, err := b.positions.DefaultForRole(ctx, position.RoleAdmin)
	if err != nil {
		return BackfillResult{}, err
	}
	fallback, err := b.positions.DefaultForRole(ctx, DefaultRole)
	if err != nil {
		return BackfillResult{}, err
	}
	if admin.Synthetic || fallback.Synthetic {
		return BackfillResult{}, internal.NewInternalError("positions table is empty, run the seeder first", nil)
	}

	res, err := b.repo.BackfillPositions(ctx, admin.ID, fallback.ID)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("backfill positions: %w", err)
	}

	b.logger.Info("position backfill finished",
		"admins_repaired", res.Admins,
		"others_repaired", res.Others,
		"admin_position", admin.Name,
		"default_position", fallback.Name)
	return res, nil
}
