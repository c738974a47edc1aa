package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/models"
)

const rewardColumns = `id, project_id, name, description, delivery_time, price, backer_limit, backer_count, created_at, updated_at`

type RewardRepo struct {
	pool *pgxpool.Pool
}

func NewRewardRepo(pool *pgxpool.Pool) *RewardRepo {
	return &RewardRepo{pool: pool}
}

func (r *RewardRepo) Create(ctx context.Context, rw *models.Reward) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO rewards (id, project_id, name, description, delivery_time, price, backer_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, rw.ID, rw.ProjectID, rw.Name, rw.Description, rw.DeliveryTime, rw.Price, rw.BackerLimit).Scan(&rw.CreatedAt, &rw.UpdatedAt)
}

func (r *RewardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	var rw models.Reward
	err := r.pool.QueryRow(ctx, `
		SELECT `+rewardColumns+` FROM rewards WHERE id = $1
	`, id).Scan(&rw.ID, &rw.ProjectID, &rw.Name, &rw.Description, &rw.DeliveryTime, &rw.Price, &rw.BackerLimit, &rw.BackerCount, &rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rw, nil
}

// ListByProjectID returns the project's reward tiers. This is the reward
// catalog snapshot the pricer works from; it is a plain non-locking read.
func (r *RewardRepo) ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Reward, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+rewardColumns+` FROM rewards WHERE project_id = $1 ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Reward
	for rows.Next() {
		var rw models.Reward
		if err := rows.Scan(&rw.ID, &rw.ProjectID, &rw.Name, &rw.Description, &rw.DeliveryTime, &rw.Price, &rw.BackerLimit, &rw.BackerCount, &rw.CreatedAt, &rw.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rw)
	}
	return list, rows.Err()
}

// RewardUpdate is a partial update: nil fields are left untouched.
type RewardUpdate struct {
	Name         *string
	Description  *string
	DeliveryTime *int64
	Price        *decimal.Decimal
	BackerLimit  *int
}

func (r *RewardRepo) Update(ctx context.Context, id uuid.UUID, u RewardUpdate) (*models.Reward, error) {
	set, args := buildSet(
		field{"name", u.Name},
		field{"description", u.Description},
		field{"delivery_time", u.DeliveryTime},
		field{"price", u.Price},
		field{"backer_limit", u.BackerLimit},
	)
	if len(args) == 0 {
		return nil, ErrNoUpdate
	}
	args = append(args, id)
	var rw models.Reward
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE rewards SET %s, updated_at = now() WHERE id = $%d
		RETURNING %s
	`, set, len(args), rewardColumns), args...).Scan(&rw.ID, &rw.ProjectID, &rw.Name, &rw.Description, &rw.DeliveryTime, &rw.Price, &rw.BackerLimit, &rw.BackerCount, &rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rw, nil
}

func (r *RewardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddBackers increments the reward's backer_count by quantity inside the
// caller's transaction. The increment is computed in SQL, not from a
// pre-transaction snapshot, so concurrent backings of the same reward both
// land.
func (r *RewardRepo) AddBackers(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	result, err := tx.Exec(ctx, `
		UPDATE rewards SET backer_count = backer_count + $1, updated_at = now() WHERE id = $2
	`, quantity, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
