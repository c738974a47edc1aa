package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

type mockUsers struct {
	byEmail   map[string]*models.User
	createErr error
}

func newMockUsers() *mockUsers {
	return &mockUsers{byEmail: make(map[string]*models.User)}
}

func (m *mockUsers) Create(_ context.Context, u *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byEmail[u.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func TestRegisterAndLogin(t *testing.T) {
	users := newMockUsers()
	svc := NewService(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "hunter22", "Alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.UserType != models.UserTypeUser || user.UserStatus != models.UserStatusActive {
		t.Errorf("new user: got type %q status %q", user.UserType, user.UserStatus)
	}
	if user.PasswordHash == "hunter22" {
		t.Error("password must not be stored in plain text")
	}

	token, err := svc.Login(ctx, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	principal, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if principal.ID != user.ID {
		t.Errorf("principal id: got %s, want %s", principal.ID, user.ID)
	}
	if principal.UserType != models.UserTypeUser {
		t.Errorf("principal type: got %q, want %q", principal.UserType, models.UserTypeUser)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := newMockUsers()
	svc := NewService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "correct", "Bob"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, "bob@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newMockUsers()
	svc := NewService(users)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol@example.com", "pw", "Carol"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "carol@example.com", "pw", "Carol Again"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got: %v", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewService(newMockUsers())

	if _, err := svc.ValidateToken(context.Background(), "not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
