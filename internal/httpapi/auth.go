package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errAccountExists      = errors.New("account already exists")
)

const (
	roleAdmin    = "admin"
	roleCustomer = "customer"
)

type AuthManager struct {
	mu       sync.RWMutex
	secret   []byte
	tokenTTL time.Duration
	store    CredentialStore
	users    map[string]credential
	now      func() time.Time
}

// CredentialStore persists admin and shopper accounts.
type CredentialStore interface {
	Accounts(ctx context.Context) ([]domain.AdminAccount, error)
	SaveAccounts(ctx context.Context, accounts []domain.AdminAccount) error
}

type credential struct {
	password string
	role     string
	active   bool
	created  time.Time
}

type adminClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

// LocalCredentials keeps accounts under the adminCredentials key of the local
// store. Shopper accounts carry the customer role.
type LocalCredentials struct {
	local *localstore.Store
}

func NewLocalCredentials(local *localstore.Store) *LocalCredentials {
	return &LocalCredentials{local: local}
}

func (c *LocalCredentials) Accounts(ctx context.Context) ([]domain.AdminAccount, error) {
	var accounts []domain.AdminAccount
	if !c.local.Get(ctx, localstore.AdminCredentials, &accounts) {
		return nil, nil
	}
	return accounts, nil
}

func (c *LocalCredentials) SaveAccounts(ctx context.Context, accounts []domain.AdminAccount) error {
	if !c.local.Set(ctx, localstore.AdminCredentials, accounts) {
		return errors.New("admin credentials not saved")
	}
	return nil
}

func NewAuthManager(secret string, tokenTTL time.Duration, creds CredentialStore) *AuthManager {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	manager := &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		store:    creds,
		users:    make(map[string]credential),
		now:      time.Now,
	}
	manager.bootstrapUsers(context.Background())
	return manager
}

// EnsureAdmin creates the first admin account when none is stored. It never
// overwrites an existing account.
func (a *AuthManager) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return false, nil
	}
	a.bootstrapUsers(ctx)

	a.mu.RLock()
	hasAdmin := false
	for _, cred := range a.users {
		if cred.role == roleAdmin {
			hasAdmin = true
			break
		}
	}
	a.mu.RUnlock()
	if hasAdmin {
		return false, nil
	}

	if err := a.addAccount(ctx, username, password, roleAdmin); err != nil {
		return false, fmt.Errorf("seed admin account: %w", err)
	}
	return true, nil
}

// Register creates a shopper account keyed by the lowercased email and signs
// the shopper in.
func (a *AuthManager) Register(ctx context.Context, email, password string) (domain.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return domain.LoginResponse{}, errors.New("password must be at least 8 characters")
	}
	a.bootstrapUsers(ctx)

	a.mu.RLock()
	_, exists := a.users[email]
	a.mu.RUnlock()
	if exists {
		return domain.LoginResponse{}, errAccountExists
	}

	if err := a.addAccount(ctx, email, password, roleCustomer); err != nil {
		return domain.LoginResponse{}, err
	}
	return a.issue(email, roleCustomer)
}

func (a *AuthManager) addAccount(ctx context.Context, username, password, role string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account := domain.AdminAccount{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    a.now().UTC(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.users[username]; exists {
		return errAccountExists
	}
	if a.store != nil {
		accounts, err := a.store.Accounts(ctx)
		if err != nil {
			return err
		}
		if err := a.store.SaveAccounts(ctx, append(accounts, account)); err != nil {
			return err
		}
	}
	a.users[username] = credential{password: hash, role: role, active: true, created: account.CreatedAt}
	return nil
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	a.bootstrapUsers(ctx)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	a.mu.RLock()
	cred, ok := a.users[username]
	a.mu.RUnlock()
	if !ok {
		return domain.LoginResponse{}, errInvalidCredentials
	}
	if !verifyPassword(cred.password, req.Password) {
		return domain.LoginResponse{}, errInvalidCredentials
	}
	if !cred.active {
		return domain.LoginResponse{}, errors.New("account is inactive")
	}

	return a.issue(username, cred.role)
}

func (a *AuthManager) issue(username, role string) (domain.LoginResponse, error) {
	expiresAt := a.now().UTC().Add(a.tokenTTL)
	token, err := a.sign(username, role, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Role:        role,
		Username:    username,
	}, nil
}

// ChangePassword replaces the password of username after checking the
// current one.
func (a *AuthManager) ChangePassword(ctx context.Context, username, current, next string) error {
	a.bootstrapUsers(ctx)
	username = strings.ToLower(strings.TrimSpace(username))

	a.mu.RLock()
	cred, ok := a.users[username]
	a.mu.RUnlock()
	if !ok || !verifyPassword(cred.password, current) {
		return errInvalidCredentials
	}
	if len(next) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := hashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password")
	}
	if a.store != nil {
		accounts, err := a.store.Accounts(ctx)
		if err != nil {
			return err
		}
		for i := range accounts {
			if strings.EqualFold(accounts[i].Username, username) {
				accounts[i].PasswordHash = hash
			}
		}
		if err := a.store.SaveAccounts(ctx, accounts); err != nil {
			return err
		}
	}

	a.mu.Lock()
	cred.password = hash
	a.users[username] = cred
	a.mu.Unlock()
	return nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &adminClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Username: sub, Role: claims.Role}, nil
}

func (a *AuthManager) sign(username, role string, expiresAt time.Time) (string, error) {
	claims := adminClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwtlib.NewNumericDate(a.now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "noon-opticals",
		},
		Role: role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// bootstrapUsers reloads the stored accounts into the credential cache and
// upgrades plain-text passwords left by older admin panels to bcrypt hashes.
func (a *AuthManager) bootstrapUsers(ctx context.Context) {
	if a.store == nil {
		return
	}

	accounts, err := a.store.Accounts(ctx)
	if err != nil || len(accounts) == 0 {
		return
	}

	upgraded := false
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, account := range accounts {
		username := strings.ToLower(strings.TrimSpace(account.Username))
		if username == "" {
			continue
		}
		password := account.PasswordHash
		if !isPasswordHash(password) {
			hashed, err := hashPassword(password)
			if err == nil {
				password = hashed
				accounts[i].PasswordHash = hashed
				upgraded = true
			}
		}
		role := account.Role
		if role == "" {
			role = roleAdmin
		}
		a.users[username] = credential{
			password: password,
			role:     role,
			active:   account.Active,
			created:  account.CreatedAt,
		}
	}
	if upgraded {
		_ = a.store.SaveAccounts(ctx, accounts)
	}
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
