package rewards

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
	ErrProjectNotFound = errors.New("project not found")
	ErrRewardNotFound  = errors.New("reward not found")
	ErrForbidden       = errors.New("forbidden")
	ErrNoUpdate        = errors.New("no fields to update")
)

// Store is the reward repository subset the service needs.
type Store interface {
	Create(ctx context.Context, rw *models.Reward) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error)
	Update(ctx context.Context, id uuid.UUID, u repository.RewardUpdate) (*models.Reward, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectStore resolves ownership and maintains the display order list.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, u repository.ProjectUpdate) (*models.Project, error)
}

type CreateProps struct {
	Name         string
	Description  string
	DeliveryTime int64
	Price        decimal.Decimal
	BackerLimit  int
}

type Service struct {
	store    Store
	projects ProjectStore
}

func NewService(store Store, projects ProjectStore) *Service {
	return &Service{store: store, projects: projects}
}

// Create adds a reward tier to the project and appends it to the project's
// display order. Only the owner or an admin may add rewards.
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, principal models.RequestUser, props CreateProps) (*models.Reward, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if !principal.CanActAs(project.UserID) {
		return nil, ErrForbidden
	}
	reward := &models.Reward{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Name:         props.Name,
		Description:  props.Description,
		DeliveryTime: props.DeliveryTime,
		Price:        props.Price,
		BackerLimit:  props.BackerLimit,
	}
	if err := s.store.Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	order := append(append([]string{}, project.RewardsOrder...), reward.ID.String())
	if _, err := s.projects.Update(ctx, projectID, repository.ProjectUpdate{RewardsOrder: order}); err != nil {
		return nil, fmt.Errorf("update rewards order: %w", err)
	}
	return reward, nil
}

// Update patches a reward tier. A price edit here never rewrites the
// paid_price snapshots on existing pledge items.
func (s *Service) Update(ctx context.Context, id uuid.UUID, principal models.RequestUser, u repository.RewardUpdate) (*models.Reward, error) {
	reward, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	if err := s.authorize(ctx, reward.ProjectID, principal); err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, id, u)
	if err != nil {
		if errors.Is(err, repository.ErrNoUpdate) {
			return nil, ErrNoUpdate
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a reward tier and drops it from the project's display order.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, principal models.RequestUser) error {
	reward, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRewardNotFound
		}
		return err
	}
	if err := s.authorize(ctx, reward.ProjectID, principal); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRewardNotFound
		}
		return err
	}
	project, err := s.projects.GetByID(ctx, reward.ProjectID)
	if err != nil {
		return nil // reward is gone; order cleanup is best effort
	}
	order := make([]string, 0, len(project.RewardsOrder))
	for _, rid := range project.RewardsOrder {
		if rid != id.String() {
			order = append(order, rid)
		}
	}
	if len(order) != len(project.RewardsOrder) {
		_, _ = s.projects.Update(ctx, reward.ProjectID, repository.ProjectUpdate{RewardsOrder: order})
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, projectID uuid.UUID, principal models.RequestUser) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	if !principal.CanActAs(project.UserID) {
		return ErrForbidden
	}
	return nil
}
