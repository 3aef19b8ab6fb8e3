package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
)

type credentialStub struct {
	mu       sync.Mutex
	accounts []domain.AdminAccount
	saves    int
}

func (s *credentialStub) Accounts(_ context.Context) ([]domain.AdminAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AdminAccount(nil), s.accounts...), nil
}

func (s *credentialStub) SaveAccounts(_ context.Context, accounts []domain.AdminAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append([]domain.AdminAccount(nil), accounts...)
	s.saves++
	return nil
}

const testSecret = "test-secret-key-0123456789abcdef"

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	creds := &credentialStub{
		accounts: []domain.AdminAccount{{
			Username:     "admin",
			PasswordHash: "admin123",
			Role:         "admin",
			Active:       true,
			CreatedAt:    time.Now().UTC(),
		}},
	}

	manager := NewAuthManager(testSecret, time.Hour, creds)
	_, err := manager.Login(context.Background(), domain.LoginRequest{
		Username: "admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	accounts, _ := creds.Accounts(context.Background())
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	if accounts[0].PasswordHash == "admin123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(accounts[0].PasswordHash, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", accounts[0].PasswordHash)
	}
}

func TestEnsureAdminSeedsOnlyOnce(t *testing.T) {
	creds := &credentialStub{}
	manager := NewAuthManager(testSecret, time.Hour, creds)

	created, err := manager.EnsureAdmin(context.Background(), "Admin", "first-password")
	if err != nil || !created {
		t.Fatalf("expected first admin to be created, got created=%v err=%v", created, err)
	}
	created, err = manager.EnsureAdmin(context.Background(), "admin", "second-password")
	if err != nil || created {
		t.Fatalf("expected existing admin to be kept, got created=%v err=%v", created, err)
	}

	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "first-password"}); err != nil {
		t.Fatalf("login with seeded password failed: %v", err)
	}
	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "second-password"}); err == nil {
		t.Fatalf("expected second password to be rejected")
	}
	if creds.saves != 1 {
		t.Fatalf("expected one save, got %d", creds.saves)
	}
}

func TestEnsureAdminWithoutPasswordDoesNothing(t *testing.T) {
	creds := &credentialStub{}
	manager := NewAuthManager(testSecret, time.Hour, creds)

	created, err := manager.EnsureAdmin(context.Background(), "admin", " ")
	if err != nil || created {
		t.Fatalf("expected no account, got created=%v err=%v", created, err)
	}
	if len(creds.accounts) != 0 {
		t.Fatalf("expected no stored accounts")
	}
}

func TestChangePassword(t *testing.T) {
	creds := &credentialStub{
		accounts: []domain.AdminAccount{{Username: "admin", PasswordHash: mustHashPassword(t, "admin123"), Role: "admin", Active: true}},
	}
	manager := NewAuthManager(testSecret, time.Hour, creds)
	ctx := context.Background()

	if err := manager.ChangePassword(ctx, "admin", "wrong", "new-password"); err != errInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err := manager.ChangePassword(ctx, "admin", "admin123", "short"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
	if err := manager.ChangePassword(ctx, "admin", "admin123", "new-password"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := manager.Login(ctx, domain.LoginRequest{Username: "admin", Password: "new-password"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := manager.Login(ctx, domain.LoginRequest{Username: "admin", Password: "admin123"}); err == nil {
		t.Fatalf("expected old password to be rejected")
	}
}

func TestInactiveAccountCannotLogin(t *testing.T) {
	creds := &credentialStub{
		accounts: []domain.AdminAccount{{Username: "staff", PasswordHash: mustHashPassword(t, "staff-pass"), Role: "admin", Active: false}},
	}
	manager := NewAuthManager(testSecret, time.Hour, creds)

	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "staff", Password: "staff-pass"}); err == nil {
		t.Fatalf("expected inactive account to be rejected")
	}
}

func TestParseTokenRoundTripAndExpiry(t *testing.T) {
	creds := &credentialStub{
		accounts: []domain.AdminAccount{{Username: "admin", PasswordHash: mustHashPassword(t, "admin123"), Role: "admin", Active: true}},
	}
	manager := NewAuthManager(testSecret, time.Hour, creds)
	now := time.Now()
	manager.now = func() time.Time { return now }

	resp, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor %+v", actor)
	}

	other := NewAuthManager("another-secret-0123456789abcdefgh", time.Hour, creds)
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}

	manager.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := manager.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestLocalCredentialsPersistAccounts(t *testing.T) {
	env := newTestEnv(t)
	creds := NewLocalCredentials(env.local)
	accounts, err := creds.Accounts(context.Background())
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Username != "admin" {
		t.Fatalf("expected the seeded admin account, got %+v", accounts)
	}
}

func TestRegisterAddsShopperAlongsideAdmins(t *testing.T) {
	creds := &credentialStub{}
	manager := NewAuthManager(testSecret, time.Hour, creds)
	ctx := context.Background()

	resp, err := manager.Register(ctx, " Shopper@Email.com ", "clear-lenses-42")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.Username != "shopper@email.com" || resp.Role != roleCustomer {
		t.Fatalf("unexpected response %+v", resp)
	}
	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil || actor.Role != roleCustomer || actor.Username != "shopper@email.com" {
		t.Fatalf("unexpected actor %+v (err %v)", actor, err)
	}

	if _, err := manager.Register(ctx, "shopper@email.com", "another-pass-1"); err != errAccountExists {
		t.Fatalf("expected errAccountExists, got %v", err)
	}
	if _, err := manager.Register(ctx, "new@email.com", "short"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}

	created, err := manager.EnsureAdmin(ctx, "admin", "first-password")
	if err != nil || !created {
		t.Fatalf("expected admin to be seeded next to shoppers, got created=%v err=%v", created, err)
	}
	accounts, _ := creds.Accounts(ctx)
	if len(accounts) != 2 {
		t.Fatalf("expected shopper and admin accounts, got %+v", accounts)
	}
}
