package memstorage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/domain/user"
	"github.com/makkenzo/gdb-api/internal/ierr"
)

// UserStore keeps users in memory. It is seeded with the configured admin account.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

var _ user.Repository = (*UserStore)(nil)

func NewUserStore(cfg *config.AuthConfig) (*UserStore, error) {
	store := &UserStore{
		users: make(map[string]*user.User),
	}

	if cfg.AdminUsername != "" {
		if err := store.Add(cfg.AdminUsername, cfg.AdminPassword, user.RoleAdmin); err != nil {
			return nil, fmt.Errorf("seed admin user: %w", err)
		}
	}

	return store, nil
}

func (s *UserStore) Add(username, password string, roles ...string) error {
	hash, err := user.HashPassword(password)
	if err != nil {
		return err
	}

	u := &user.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
	}

	s.mu.Lock()
	s.users[strings.ToLower(username)] = u
	s.mu.Unlock()
	return nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, ierr.ErrUserNotFound
	}

	userCopy := *u
	userCopy.Roles = append([]string(nil), u.Roles...)
	return &userCopy, nil
}
