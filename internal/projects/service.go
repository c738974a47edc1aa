package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrForbidden    = errors.New("forbidden")
	ErrFieldsFrozen = errors.New("name, funding goal and start time are frozen in this status")
	ErrNoUpdate     = errors.New("no fields to update")
)

// Store is the project repository subset the service needs.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, u repository.ProjectUpdate) (*models.Project, error)
}

// RewardLister loads the reward tiers shown with a project.
type RewardLister interface {
	ListByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Reward, error)
}

type CreateProps struct {
	Name           string
	Description    string
	Blurb          string
	PaymentAddress string
	Category       string
	FundingGoal    decimal.Decimal
	StartTime      int64
	Duration       int64
	BaseCurrency   string
}

type Service struct {
	store   Store
	rewards RewardLister
}

func NewService(store Store, rewards RewardLister) *Service {
	return &Service{store: store, rewards: rewards}
}

// Create makes a new project in Initial status owned by ownerID. Funding
// aggregates start at zero and are only ever advanced by the backing engine.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, props CreateProps) (*models.Project, error) {
	project := &models.Project{
		ID:               uuid.New(),
		UserID:           ownerID,
		Name:             props.Name,
		Description:      props.Description,
		Blurb:            props.Blurb,
		PaymentAddress:   props.PaymentAddress,
		Category:         props.Category,
		FundingGoal:      props.FundingGoal,
		StartTime:        props.StartTime,
		Duration:         props.Duration,
		TotalPledged:     decimal.Zero,
		BaseCurrency:     props.BaseCurrency,
		Status:           models.ProjectStatusInitial,
		BlockchainStatus: models.ChainStatusNone,
		RewardsOrder:     []string{},
	}
	if err := s.store.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Get returns the project and its rewards. Projects outside the publicly
// visible statuses are only returned to admins and the owner.
func (s *Service) Get(ctx context.Context, id uuid.UUID, principal models.RequestUser) (*models.Project, []models.Reward, error) {
	project, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !project.PubliclyVisible() && !principal.CanActAs(project.UserID) {
		return nil, nil, ErrNotFound
	}
	rewards, err := s.rewards.ListByProjectID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load rewards: %w", err)
	}
	return project, rewards, nil
}

// List returns projects visible to the principal: admins see everything,
// everyone else sees public projects plus their own.
func (s *Service) List(ctx context.Context, principal models.RequestUser) ([]*models.Project, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if principal.IsAdmin() {
		return all, nil
	}
	visible := make([]*models.Project, 0, len(all))
	for _, p := range all {
		if p.PubliclyVisible() || (principal.UserType == models.UserTypeUser && p.UserID == principal.ID) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// Update applies a partial update. Owners may edit their project except for
// the frozen fields while Active/Complete/Denied; status and chain fields
// are admin-only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, principal models.RequestUser, u repository.ProjectUpdate) (*models.Project, error) {
	project, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !principal.CanActAs(project.UserID) {
		return nil, ErrForbidden
	}
	if !principal.IsAdmin() {
		if u.Status != nil || u.BlockchainStatus != nil || u.TransactionHash != nil {
			return nil, ErrForbidden
		}
		if project.FieldsFrozen() && (u.Name != nil || u.FundingGoal != nil || u.StartTime != nil) {
			return nil, ErrFieldsFrozen
		}
	}
	updated, err := s.store.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, repository.ErrNoUpdate) {
			return nil, ErrNoUpdate
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}
