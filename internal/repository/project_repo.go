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

const projectColumns = `id, user_id, name, description, blurb, payment_address, category, funding_goal, start_time, duration, total_pledged, backer_count, base_currency, status, blockchain_status, transaction_hash, rewards_order, created_at, updated_at`

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, user_id, name, description, blurb, payment_address, category, funding_goal, start_time, duration, total_pledged, base_currency, status, blockchain_status, rewards_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Name, p.Description, p.Blurb, p.PaymentAddress, p.Category, p.FundingGoal, p.StartTime, p.Duration, p.TotalPledged, p.BaseCurrency, p.Status, p.BlockchainStatus, p.RewardsOrder).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Blurb, &p.PaymentAddress, &p.Category, &p.FundingGoal, &p.StartTime, &p.Duration, &p.TotalPledged, &p.BackerCount, &p.BaseCurrency, &p.Status, &p.BlockchainStatus, &p.TransactionHash, &p.RewardsOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Blurb, &p.PaymentAddress, &p.Category, &p.FundingGoal, &p.StartTime, &p.Duration, &p.TotalPledged, &p.BackerCount, &p.BaseCurrency, &p.Status, &p.BlockchainStatus, &p.TransactionHash, &p.RewardsOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ProjectUpdate is a partial update: nil fields are left untouched.
type ProjectUpdate struct {
	Name             *string
	Description      *string
	Blurb            *string
	PaymentAddress   *string
	Category         *string
	FundingGoal      *decimal.Decimal
	StartTime        *int64
	Duration         *int64
	BaseCurrency     *string
	Status           *string
	BlockchainStatus *string
	TransactionHash  *string
	RewardsOrder     []string
}

// Update applies the set fields to the project row. Returns ErrNoUpdate when
// every field is nil and ErrNotFound when the row does not exist.
func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, u ProjectUpdate) (*models.Project, error) {
	set, args := buildSet(
		field{"name", u.Name},
		field{"description", u.Description},
		field{"blurb", u.Blurb},
		field{"payment_address", u.PaymentAddress},
		field{"category", u.Category},
		field{"funding_goal", u.FundingGoal},
		field{"start_time", u.StartTime},
		field{"duration", u.Duration},
		field{"base_currency", u.BaseCurrency},
		field{"status", u.Status},
		field{"blockchain_status", u.BlockchainStatus},
		field{"transaction_hash", u.TransactionHash},
		field{"rewards_order", u.RewardsOrder},
	)
	if len(args) == 0 {
		return nil, ErrNoUpdate
	}
	args = append(args, id)
	var p models.Project
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE projects SET %s, updated_at = now() WHERE id = $%d
		RETURNING %s
	`, set, len(args), projectColumns), args...).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Blurb, &p.PaymentAddress, &p.Category, &p.FundingGoal, &p.StartTime, &p.Duration, &p.TotalPledged, &p.BackerCount, &p.BaseCurrency, &p.Status, &p.BlockchainStatus, &p.TransactionHash, &p.RewardsOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ApplyBacking increments the project funding aggregates inside the caller's
// transaction. The increments are computed in SQL so concurrent backings
// cannot overwrite each other's deltas.
func (r *ProjectRepo) ApplyBacking(ctx context.Context, tx pgx.Tx, id uuid.UUID, total decimal.Decimal) error {
	result, err := tx.Exec(ctx, `
		UPDATE projects
		SET backer_count = backer_count + 1, total_pledged = total_pledged + $1, updated_at = now()
		WHERE id = $2
	`, total, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
