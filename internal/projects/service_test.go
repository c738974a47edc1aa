package projects

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
	projects map[uuid.UUID]*models.Project
	updates  []repository.ProjectUpdate
}

func newMockStore(ps ...*models.Project) *mockStore {
	m := &mockStore{projects: make(map[uuid.UUID]*models.Project)}
	for _, p := range ps {
		cp := *p
		m.projects[p.ID] = &cp
	}
	return m
}

func (m *mockStore) Create(_ context.Context, p *models.Project) error {
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) List(context.Context) ([]*models.Project, error) {
	out := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) Update(_ context.Context, id uuid.UUID, u repository.ProjectUpdate) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.updates = append(m.updates, u)
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	cp := *p
	return &cp, nil
}

type mockRewardLister struct {
	rewards []models.Reward
}

func (m *mockRewardLister) ListByProjectID(context.Context, uuid.UUID) ([]models.Reward, error) {
	return m.rewards, nil
}

func asUser(id uuid.UUID) models.RequestUser {
	return models.RequestUser{ID: id, UserType: models.UserTypeUser}
}

func asAdmin() models.RequestUser {
	return models.RequestUser{ID: uuid.New(), UserType: models.UserTypeAdmin}
}

func project(owner uuid.UUID, status string) *models.Project {
	return &models.Project{
		ID:           uuid.New(),
		UserID:       owner,
		Status:       status,
		TotalPledged: decimal.Zero,
		RewardsOrder: []string{},
	}
}

func TestCreateProject(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockRewardLister{})
	owner := uuid.New()

	p, err := svc.Create(context.Background(), owner, CreateProps{
		Name:         "Solar Lantern",
		FundingGoal:  decimal.RequireFromString("5000"),
		BaseCurrency: models.CurrencyEthereum,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Status != models.ProjectStatusInitial {
		t.Errorf("status: got %q, want %q", p.Status, models.ProjectStatusInitial)
	}
	if p.UserID != owner {
		t.Error("project should be owned by the creator")
	}
	if !p.TotalPledged.IsZero() || p.BackerCount != 0 {
		t.Error("funding aggregates must start at zero")
	}
	if p.BlockchainStatus != models.ChainStatusNone {
		t.Errorf("chain status: got %q, want %q", p.BlockchainStatus, models.ChainStatusNone)
	}
}

func TestGetVisibility(t *testing.T) {
	owner := uuid.New()
	hidden := project(owner, models.ProjectStatusReview)
	public := project(owner, models.ProjectStatusActive)
	store := newMockStore(hidden, public)
	svc := NewService(store, &mockRewardLister{})
	ctx := context.Background()

	// Anyone sees a public project.
	if _, _, err := svc.Get(ctx, public.ID, models.RequestUser{UserType: models.UserTypeAnonymous}); err != nil {
		t.Errorf("public project, anonymous: %v", err)
	}

	// A hidden project is invisible to strangers, not even as a 403.
	if _, _, err := svc.Get(ctx, hidden.ID, asUser(uuid.New())); !errors.Is(err, ErrNotFound) {
		t.Errorf("hidden project, stranger: expected ErrNotFound, got: %v", err)
	}

	// Owner and admin see it.
	if _, _, err := svc.Get(ctx, hidden.ID, asUser(owner)); err != nil {
		t.Errorf("hidden project, owner: %v", err)
	}
	if _, _, err := svc.Get(ctx, hidden.ID, asAdmin()); err != nil {
		t.Errorf("hidden project, admin: %v", err)
	}
}

func TestListVisibility(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	hidden := project(owner, models.ProjectStatusInitial)
	public := project(stranger, models.ProjectStatusPrelaunch)
	store := newMockStore(hidden, public)
	svc := NewService(store, &mockRewardLister{})
	ctx := context.Background()

	all, err := svc.List(ctx, asAdmin())
	if err != nil {
		t.Fatalf("List admin: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin list: got %d, want 2", len(all))
	}

	own, err := svc.List(ctx, asUser(owner))
	if err != nil {
		t.Fatalf("List owner: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("owner list: got %d, want 2 (public + own hidden)", len(own))
	}

	anon, err := svc.List(ctx, models.RequestUser{UserType: models.UserTypeAnonymous})
	if err != nil {
		t.Fatalf("List anonymous: %v", err)
	}
	if len(anon) != 1 || anon[0].ID != public.ID {
		t.Errorf("anonymous list: got %d projects, want just the public one", len(anon))
	}
}

func TestUpdatePermissions(t *testing.T) {
	owner := uuid.New()
	p := project(owner, models.ProjectStatusInitial)
	store := newMockStore(p)
	svc := NewService(store, &mockRewardLister{})
	ctx := context.Background()

	name := "Renamed"
	if _, err := svc.Update(ctx, p.ID, asUser(owner), repository.ProjectUpdate{Name: &name}); err != nil {
		t.Errorf("owner rename: %v", err)
	}

	// Stranger cannot touch it.
	if _, err := svc.Update(ctx, p.ID, asUser(uuid.New()), repository.ProjectUpdate{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger update: expected ErrForbidden, got: %v", err)
	}

	// Status transitions are admin-only.
	status := models.ProjectStatusActive
	if _, err := svc.Update(ctx, p.ID, asUser(owner), repository.ProjectUpdate{Status: &status}); !errors.Is(err, ErrForbidden) {
		t.Errorf("owner status change: expected ErrForbidden, got: %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, asAdmin(), repository.ProjectUpdate{Status: &status}); err != nil {
		t.Errorf("admin status change: %v", err)
	}
}

func TestUpdateFrozenFields(t *testing.T) {
	owner := uuid.New()
	p := project(owner, models.ProjectStatusActive)
	store := newMockStore(p)
	svc := NewService(store, &mockRewardLister{})
	ctx := context.Background()

	name := "New Name"
	goal := decimal.RequireFromString("9000")
	if _, err := svc.Update(ctx, p.ID, asUser(owner), repository.ProjectUpdate{Name: &name}); !errors.Is(err, ErrFieldsFrozen) {
		t.Errorf("rename while active: expected ErrFieldsFrozen, got: %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, asUser(owner), repository.ProjectUpdate{FundingGoal: &goal}); !errors.Is(err, ErrFieldsFrozen) {
		t.Errorf("goal change while active: expected ErrFieldsFrozen, got: %v", err)
	}

	// Non-frozen fields stay editable.
	desc := "updated description"
	if _, err := svc.Update(ctx, p.ID, asUser(owner), repository.ProjectUpdate{Description: &desc}); err != nil {
		t.Errorf("description change while active: %v", err)
	}

	// Admins bypass the freeze.
	if _, err := svc.Update(ctx, p.ID, asAdmin(), repository.ProjectUpdate{Name: &name}); err != nil {
		t.Errorf("admin rename while active: %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewService(newMockStore(), &mockRewardLister{})
	name := "x"
	if _, err := svc.Update(context.Background(), uuid.New(), asAdmin(), repository.ProjectUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
