package rewards

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

type mockStore struct {
	rewards map[uuid.UUID]*models.Reward
}

func newMockStore(rs ...*models.Reward) *mockStore {
	m := &mockStore{rewards: make(map[uuid.UUID]*models.Reward)}
	for _, r := range rs {
		cp := *r
		m.rewards[r.ID] = &cp
	}
	return m
}

func (m *mockStore) Create(_ context.Context, rw *models.Reward) error {
	cp := *rw
	m.rewards[rw.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*models.Reward, error) {
	r, ok := m.rewards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockStore) Update(_ context.Context, id uuid.UUID, u repository.RewardUpdate) (*models.Reward, error) {
	r, ok := m.rewards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.Price != nil {
		r.Price = *u.Price
	}
	if u.Name != nil {
		r.Name = *u.Name
	}
	cp := *r
	return &cp, nil
}

func (m *mockStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rewards[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rewards, id)
	return nil
}

type mockProjects struct {
	projects map[uuid.UUID]*models.Project
}

func newMockProjects(ps ...*models.Project) *mockProjects {
	m := &mockProjects{projects: make(map[uuid.UUID]*models.Project)}
	for _, p := range ps {
		cp := *p
		m.projects[p.ID] = &cp
	}
	return m
}

func (m *mockProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjects) Update(_ context.Context, id uuid.UUID, u repository.ProjectUpdate) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.RewardsOrder != nil {
		p.RewardsOrder = u.RewardsOrder
	}
	cp := *p
	return &cp, nil
}

func asUser(id uuid.UUID) models.RequestUser {
	return models.RequestUser{ID: id, UserType: models.UserTypeUser}
}

func TestCreateRewardAppendsToOrder(t *testing.T) {
	owner := uuid.New()
	project := &models.Project{ID: uuid.New(), UserID: owner, RewardsOrder: []string{}}
	store := newMockStore()
	projects := newMockProjects(project)
	svc := NewService(store, projects)
	ctx := context.Background()

	reward, err := svc.Create(ctx, project.ID, asUser(owner), CreateProps{
		Name:  "Early Bird",
		Price: decimal.RequireFromString("25"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reward.ProjectID != project.ID {
		t.Error("reward should reference the project")
	}
	if reward.BackerCount != 0 {
		t.Errorf("backer count: got %d, want 0", reward.BackerCount)
	}

	order := projects.projects[project.ID].RewardsOrder
	if len(order) != 1 || order[0] != reward.ID.String() {
		t.Errorf("rewards order: got %v, want [%s]", order, reward.ID)
	}
}

func TestCreateRewardAuthorization(t *testing.T) {
	owner := uuid.New()
	project := &models.Project{ID: uuid.New(), UserID: owner}
	svc := NewService(newMockStore(), newMockProjects(project))
	ctx := context.Background()

	if _, err := svc.Create(ctx, project.ID, asUser(uuid.New()), CreateProps{Name: "x"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger create: expected ErrForbidden, got: %v", err)
	}
	if _, err := svc.Create(ctx, uuid.New(), asUser(owner), CreateProps{Name: "x"}); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("missing project: expected ErrProjectNotFound, got: %v", err)
	}
}

func TestUpdateReward(t *testing.T) {
	owner := uuid.New()
	project := &models.Project{ID: uuid.New(), UserID: owner}
	reward := &models.Reward{ID: uuid.New(), ProjectID: project.ID, Price: decimal.RequireFromString("25")}
	store := newMockStore(reward)
	svc := NewService(store, newMockProjects(project))
	ctx := context.Background()

	newPrice := decimal.RequireFromString("30")
	updated, err := svc.Update(ctx, reward.ID, asUser(owner), repository.RewardUpdate{Price: &newPrice})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Errorf("price: got %s, want %s", updated.Price, newPrice)
	}

	if _, err := svc.Update(ctx, reward.ID, asUser(uuid.New()), repository.RewardUpdate{Price: &newPrice}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger update: expected ErrForbidden, got: %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), asUser(owner), repository.RewardUpdate{Price: &newPrice}); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("missing reward: expected ErrRewardNotFound, got: %v", err)
	}
}

func TestDeleteRewardCleansOrder(t *testing.T) {
	owner := uuid.New()
	reward := &models.Reward{ID: uuid.New()}
	other := uuid.New().String()
	project := &models.Project{ID: uuid.New(), UserID: owner, RewardsOrder: []string{other, reward.ID.String()}}
	reward.ProjectID = project.ID
	store := newMockStore(reward)
	projects := newMockProjects(project)
	svc := NewService(store, projects)
	ctx := context.Background()

	if err := svc.Delete(ctx, reward.ID, asUser(owner)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.rewards[reward.ID]; ok {
		t.Error("reward should be deleted")
	}
	order := projects.projects[project.ID].RewardsOrder
	if len(order) != 1 || order[0] != other {
		t.Errorf("rewards order after delete: got %v, want [%s]", order, other)
	}

	if err := svc.Delete(ctx, reward.ID, asUser(owner)); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("double delete: expected ErrRewardNotFound, got: %v", err)
	}
}
