package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/security"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func authConfig() *config.AppConfig {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{
		JWTAccessSecret: "test-secret",
		JWTAccessTTL:    time.Hour,
	}
	return cfg
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	svc := service.NewAuthService(users, authConfig(), zerolog.Nop())

	registered, err := svc.Register(ctx, service.RegisterInput{
		Email:       "Alice@Example.COM",
		Password:    "hunter2hunter2",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.User.Email != "alice@example.com" {
		t.Fatalf("email must be normalized, got %s", registered.User.Email)
	}
	if registered.AccessToken == "" {
		t.Fatal("register must issue a token")
	}

	claims, err := security.ParseAccessToken(registered.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != registered.User.ID {
		t.Fatalf("token user = %s, want %s", claims.UserID, registered.User.ID)
	}

	loggedIn, err := svc.Login(ctx, service.LoginInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Fatalf("login returned a different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAuthService(newFakeUserStore(), authConfig(), zerolog.Nop())

	input := service.RegisterInput{Email: "alice@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, input); err == nil {
		t.Fatal("duplicate email must be refused")
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	svc := service.NewAuthService(users, authConfig(), zerolog.Nop())

	registered, err := svc.Register(ctx, service.RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, service.LoginInput{Email: "alice@example.com", Password: "nope"})
		if !errors.Is(err, service.ErrInvalidCredentials) {
			t.Fatalf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, service.LoginInput{Email: "ghost@example.com", Password: "whatever"})
		if !errors.Is(err, service.ErrInvalidCredentials) {
			t.Fatalf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("suspended user", func(t *testing.T) {
		users.mu.Lock()
		u := users.users[registered.User.ID]
		u.Status = models.UserStatusSuspended
		users.users[u.ID] = u
		users.mu.Unlock()

		_, err := svc.Login(ctx, service.LoginInput{Email: "alice@example.com", Password: "hunter2hunter2"})
		if !errors.Is(err, service.ErrUserSuspended) {
			t.Fatalf("got %v, want ErrUserSuspended", err)
		}
	})
}
