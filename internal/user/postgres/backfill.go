package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/crm-auth/internal/user"
	"github.com/jmoiron/sqlx"
)

const (
	backfillAdminsQuery = `
UPDATE users SET position_id = $1, updated_at = $2
WHERE role = 'admin'
  AND (position_id IS NULL OR NOT EXISTS (SELECT 1 FROM positions p WHERE p.id = users.position_id))`

	backfillOthersQuery = `
UPDATE users SET position_id = $1, updated_at = $2
WHERE role IS DISTINCT FROM 'admin'
  AND (position_id IS NULL OR NOT EXISTS (SELECT 1 FROM positions p WHERE p.id = users.position_id))`
)

type BackfillRepository struct {
	db *sqlx.DB
}

func NewBackfillRepository(db *sqlx.DB) *BackfillRepository {
	return &BackfillRepository{db: db}
}

// BackfillPositions repairs both role buckets in a single transaction.
func (r *BackfillRepository) BackfillPositions(ctx context.Context, adminPositionID, defaultPositionID int64) (res user.BackfillResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin backfill: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	res.Admins, err = execCount(ctx, tx, backfillAdminsQuery, adminPositionID, now)
	if err != nil {
		return user.BackfillResult{}, fmt.Errorf("backfill admins: %w", err)
	}
	res.Others, err = execCount(ctx, tx, backfillOthersQuery, defaultPositionID, now)
	if err != nil {
		return user.BackfillResult{}, fmt.Errorf("backfill others: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return user.BackfillResult{}, fmt.Errorf("commit backfill: %w", err)
	}
	return res, nil
}

func execCount(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
