package backing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/confirm"
	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

// ProjectStore is the project repository subset the engine needs.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ApplyBacking(ctx context.Context, tx pgx.Tx, id uuid.UUID, total decimal.Decimal) error
}

// RewardStore reads the catalog snapshot and applies backer increments.
type RewardStore interface {
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Reward, error)
	AddBackers(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

// PledgeStore inserts the pledge and its items transactionally.
type PledgeStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Pledge, items []models.PledgeItem) error
}

// UserStore resolves the backer.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EnqueueConfirmSyncTxFunc enqueues a confirmation-sync job within the given
// transaction. Provided by main using river.Client.InsertTx; nil disables
// confirmation sync.
type EnqueueConfirmSyncTxFunc func(ctx context.Context, tx pgx.Tx, args confirm.PledgeSyncArgs) error

// Service is the backing transaction engine: it validates eligibility,
// prices the request against a catalog snapshot, and applies the pledge
// insert plus both aggregate updates in one transaction.
type Service struct {
	pool     TxBeginner
	projects ProjectStore
	rewards  RewardStore
	pledges  PledgeStore
	users    UserStore
	enqueue  EnqueueConfirmSyncTxFunc
	log      *slog.Logger
}

func NewService(pool TxBeginner, projects ProjectStore, rewards RewardStore, pledges PledgeStore, users UserStore, enqueue EnqueueConfirmSyncTxFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{pool: pool, projects: projects, rewards: rewards, pledges: pledges, users: users, enqueue: enqueue, log: log}
}

// BackProject executes one backing operation. All preconditions are checked
// before the transaction opens, so every precondition failure has zero side
// effects. Inside the transaction the pledge insert, the project aggregate
// update and the per-reward backer increments either all commit or all roll
// back.
func (s *Service) BackProject(ctx context.Context, projectID, backerID uuid.UUID, selections []RewardSelection) (*models.Pledge, error) {
	backer, err := s.users.GetByID(ctx, backerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve backer: %w", err)
	}
	if backer.UserStatus == models.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.Status != models.ProjectStatusActive {
		return nil, ErrProjectInactive
	}

	catalog, err := s.rewards.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load reward catalog: %w", err)
	}

	items, total, err := PriceSelections(selections, catalog, project.BaseCurrency)
	if err != nil {
		return nil, err
	}

	pledge := &models.Pledge{
		ID:               uuid.New(),
		ProjectID:        projectID,
		UserID:           backerID,
		BlockchainStatus: models.ChainStatusNone,
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].PledgeID = pledge.ID
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin backing tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.pledges.CreateTx(ctx, tx, pledge, items); err != nil {
		return nil, fmt.Errorf("insert pledge: %w", err)
	}
	if err := s.projects.ApplyBacking(ctx, tx, projectID, total); err != nil {
		return nil, fmt.Errorf("update project aggregates: %w", err)
	}
	for _, delta := range rewardDeltas(items) {
		if err := s.rewards.AddBackers(ctx, tx, delta.rewardID, delta.quantity); err != nil {
			return nil, fmt.Errorf("update reward %s backer count: %w", delta.rewardID, err)
		}
	}
	if s.enqueue != nil {
		if err := s.enqueue(ctx, tx, confirm.PledgeSyncArgs{PledgeID: pledge.ID}); err != nil {
			return nil, fmt.Errorf("enqueue confirmation sync: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit backing tx: %w", err)
	}

	s.log.Info("project backed",
		"project_id", projectID, "pledge_id", pledge.ID,
		"user_id", backerID, "total", total.String(), "items", len(items))
	return pledge, nil
}

type rewardDelta struct {
	rewardID uuid.UUID
	quantity int
}

// rewardDeltas sums quantities per distinct reward, preserving first
// appearance order, so each reward row is updated once per operation.
func rewardDeltas(items []models.PledgeItem) []rewardDelta {
	index := make(map[uuid.UUID]int, len(items))
	var deltas []rewardDelta
	for _, it := range items {
		if i, ok := index[it.RewardID]; ok {
			deltas[i].quantity += it.Quantity
			continue
		}
		index[it.RewardID] = len(deltas)
		deltas = append(deltas, rewardDelta{rewardID: it.RewardID, quantity: it.Quantity})
	}
	return deltas
}
