package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crowdtrust/backend/internal/models"
)

const pledgeColumns = `id, project_id, user_id, comment, blockchain_status, transaction_hash, created_at, updated_at`

const pledgeItemColumns = `id, pledge_id, reward_id, quantity, paid_price, paid_currency, blockchain_status, transaction_hash, created_at, updated_at`

type PledgeRepo struct {
	pool *pgxpool.Pool
}

func NewPledgeRepo(pool *pgxpool.Pool) *PledgeRepo {
	return &PledgeRepo{pool: pool}
}

// CreateTx inserts the pledge and all of its items inside the caller's
// transaction. Items carry the price snapshot taken by the pricer; their
// paid_price never changes afterwards.
func (r *PledgeRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Pledge, items []models.PledgeItem) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO pledges (id, project_id, user_id, comment, blockchain_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, p.ID, p.ProjectID, p.UserID, p.Comment, p.BlockchainStatus).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].PledgeID = p.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO pledge_items (id, pledge_id, reward_id, quantity, paid_price, paid_currency, blockchain_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`, items[i].ID, items[i].PledgeID, items[i].RewardID, items[i].Quantity, items[i].PaidPrice, items[i].PaidCurrency, items[i].BlockchainStatus).Scan(&items[i].CreatedAt, &items[i].UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PledgeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Pledge, error) {
	var p models.Pledge
	err := r.pool.QueryRow(ctx, `
		SELECT `+pledgeColumns+` FROM pledges WHERE id = $1
	`, id).Scan(&p.ID, &p.ProjectID, &p.UserID, &p.Comment, &p.BlockchainStatus, &p.TransactionHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListItems returns the items of a pledge in insertion order.
func (r *PledgeRepo) ListItems(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+pledgeItemColumns+` FROM pledge_items WHERE pledge_id = $1 ORDER BY created_at
	`, pledgeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []models.PledgeItem
	for rows.Next() {
		var it models.PledgeItem
		if err := rows.Scan(&it.ID, &it.PledgeID, &it.RewardID, &it.Quantity, &it.PaidPrice, &it.PaidCurrency, &it.BlockchainStatus, &it.TransactionHash, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List returns pledges filtered by project and/or user. Zero UUIDs mean no
// filter on that column.
func (r *PledgeRepo) List(ctx context.Context, projectID, userID uuid.UUID) ([]*models.Pledge, error) {
	query := `SELECT ` + pledgeColumns + ` FROM pledges`
	var args []any
	var where []string
	if projectID != uuid.Nil {
		args = append(args, projectID)
		where = append(where, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if userID != uuid.Nil {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Pledge
	for rows.Next() {
		var p models.Pledge
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.UserID, &p.Comment, &p.BlockchainStatus, &p.TransactionHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// PledgeUpdate is a partial update of the mutable pledge fields. It never
// touches project or reward aggregates.
type PledgeUpdate struct {
	Comment          *string
	BlockchainStatus *string
	TransactionHash  *string
}

func (r *PledgeRepo) Update(ctx context.Context, id uuid.UUID, u PledgeUpdate) (*models.Pledge, error) {
	set, args := buildSet(
		field{"comment", u.Comment},
		field{"blockchain_status", u.BlockchainStatus},
		field{"transaction_hash", u.TransactionHash},
	)
	if len(args) == 0 {
		return nil, ErrNoUpdate
	}
	args = append(args, id)
	var p models.Pledge
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE pledges SET %s, updated_at = now() WHERE id = $%d
		RETURNING %s
	`, set, len(args), pledgeColumns), args...).Scan(&p.ID, &p.ProjectID, &p.UserID, &p.Comment, &p.BlockchainStatus, &p.TransactionHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SetChainStatus records the confirmation outcome reported by the external
// payment process on the pledge and all of its items.
func (r *PledgeRepo) SetChainStatus(ctx context.Context, id uuid.UUID, status string, txHash *string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE pledges SET blockchain_status = $1, transaction_hash = COALESCE($2, transaction_hash), updated_at = now()
		WHERE id = $3
	`, status, txHash, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = tx.Exec(ctx, `
		UPDATE pledge_items SET blockchain_status = $1, transaction_hash = COALESCE($2, transaction_hash), updated_at = now()
		WHERE pledge_id = $3
	`, status, txHash, id)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
