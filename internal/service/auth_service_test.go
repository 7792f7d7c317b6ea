package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/config"
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, username string, role domain.UserRole) error {
	user, ok := r.users[username]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	user, ok := r.users[username]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, username string) error {
	if _, ok := r.users[username]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, username)
	return nil
}

func authConfig() config.AuthConfig {
	// Minimum bcrypt cost keeps the tests fast.
	return config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string, role domain.UserRole) {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.users[username] = &domain.User{Username: username, PasswordHash: hash, Role: role}
}

var adminSession = domain.Session{Username: "root", IsAdmin: true}

func TestLoginIssuesToken(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", domain.RoleUser)
	svc := NewAuthService(authConfig(), repo)

	token, _, err := svc.Login(context.Background(), "maria", "segredo123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Username != "maria" || claims.IsAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", domain.RoleUser)
	svc := NewAuthService(authConfig(), repo)

	_, _, err := svc.Login(context.Background(), "maria", "errada")
	if !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestLoginUnknownUserLooksLikeBadCredentials(t *testing.T) {
	svc := NewAuthService(authConfig(), newFakeUserRepo())

	_, _, err := svc.Login(context.Background(), "ninguem", "x")
	if !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	svc := NewAuthService(authConfig(), newFakeUserRepo())

	err := svc.CreateUser(context.Background(), domain.Session{Username: "maria"}, "novo", "senha", false)
	if !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", domain.RoleUser)
	svc := NewAuthService(authConfig(), repo)

	err := svc.CreateUser(context.Background(), adminSession, "maria", "outra", false)
	if !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestListUsersBlanksHashes(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "segredo123", domain.RoleUser)
	svc := NewAuthService(authConfig(), repo)

	users, err := svc.ListUsers(context.Background(), adminSession)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].PasswordHash != "" {
		t.Fatalf("users = %+v", users)
	}
}

func TestRemoveUserBlocksSelfRemoval(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "root", "segredo123", domain.RoleAdmin)
	svc := NewAuthService(authConfig(), repo)

	err := svc.RemoveUser(context.Background(), adminSession, "root")
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestForceSetPasswordThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "maria", "antiga", domain.RoleUser)
	svc := NewAuthService(authConfig(), repo)
	ctx := context.Background()

	if err := svc.ForceSetPassword(ctx, adminSession, "maria", "nova123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "maria", "antiga"); err == nil {
		t.Fatal("old password still accepted")
	}
	if _, _, err := svc.Login(ctx, "maria", "nova123"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
