package pledges

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

var (
	ErrNotFound  = errors.New("pledge not found")
	ErrForbidden = errors.New("forbidden")
	ErrNoUpdate  = errors.New("no fields to update")
)

// Store is the pledge repository subset the service needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pledge, error)
	ListItems(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeItem, error)
	List(ctx context.Context, projectID, userID uuid.UUID) ([]*models.Pledge, error)
	Update(ctx context.Context, id uuid.UUID, u repository.PledgeUpdate) (*models.Pledge, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns a pledge with its items. Only the pledge owner and admins may
// read it.
func (s *Service) Get(ctx context.Context, id uuid.UUID, principal models.RequestUser) (*models.Pledge, []models.PledgeItem, error) {
	pledge, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !principal.CanActAs(pledge.UserID) {
		return nil, nil, ErrForbidden
	}
	items, err := s.store.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return pledge, items, nil
}

// List returns pledges filtered by project and/or user. Non-admins only see
// their own pledges.
func (s *Service) List(ctx context.Context, principal models.RequestUser, projectID, userID uuid.UUID) ([]*models.Pledge, error) {
	if !principal.IsAdmin() {
		userID = principal.ID
	}
	return s.store.List(ctx, projectID, userID)
}

// Update patches the mutable pledge fields (comment, chain status, tx hash)
// for the owner or an admin. It never touches project or reward aggregates.
func (s *Service) Update(ctx context.Context, id uuid.UUID, principal models.RequestUser, u repository.PledgeUpdate) (*models.Pledge, error) {
	pledge, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !principal.CanActAs(pledge.UserID) {
		return nil, ErrForbidden
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
