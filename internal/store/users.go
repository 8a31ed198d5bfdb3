package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"toolcrib/pkg/domain"
)

var userColumns = []string{"Username", "Password", "Role"}

// HashPassword returns the hex SHA-256 digest stored in the users file.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// LoadUsers returns the user accounts, reading the users file on first use.
// Values are trimmed and rows without a username are dropped.
func (s *Store) LoadUsers(ctx context.Context) []domain.UserAccount {
	if s.users != nil {
		return slices.Clone(s.users)
	}
	start := time.Now()
	users, err := s.readUsers()
	s.observe(ctx, "load_users", start, err)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("users file not found", "path", s.paths.Users)
		} else {
			s.logger.Error("load users failed", "path", s.paths.Users, "error", err)
		}
		return []domain.UserAccount{}
	}
	s.users = users
	return slices.Clone(users)
}

func (s *Store) readUsers() ([]domain.UserAccount, error) {
	t, skipped, err := readTable(s.paths.Users, ',')
	if err != nil {
		return nil, err
	}
	for _, re := range skipped {
		s.logger.Error("skipping unreadable user row", "path", s.paths.Users, "line", re.line, "error", re.err)
	}
	users := make([]domain.UserAccount, 0, len(t.rows))
	for _, r := range t.rows {
		u := domain.UserAccount{
			Username:     strings.TrimSpace(r.values["Username"]),
			PasswordHash: strings.TrimSpace(r.values["Password"]),
			Role:         domain.Role(strings.TrimSpace(r.values["Role"])),
		}
		if u.Username == "" {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// SaveUsers rewrites the users file and replaces the cache.
func (s *Store) SaveUsers(ctx context.Context, users []domain.UserAccount) error {
	start := time.Now()
	records := make([][]string, 0, len(users))
	for _, u := range users {
		records = append(records, []string{u.Username, u.PasswordHash, string(u.Role)})
	}
	payload, err := encodeTable(userColumns, records, ',', false)
	if err == nil {
		err = s.writeFile(ctx, s.paths.Users, payload)
	}
	s.observe(ctx, "save_users", start, err)
	if err != nil {
		s.users = nil
		s.logger.Error("save users failed", "path", s.paths.Users, "error", err)
		return fmt.Errorf("save users: %w", err)
	}
	s.users = slices.Clone(users)
	return nil
}

// AddUser appends an account with the hashed password. It returns false
// without error when the username already exists.
func (s *Store) AddUser(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	users := s.LoadUsers(ctx)
	if slices.ContainsFunc(users, func(u domain.UserAccount) bool { return u.Username == username }) {
		return false, nil
	}
	users = append(users, domain.UserAccount{Username: username, PasswordHash: HashPassword(password), Role: role})
	if err := s.SaveUsers(ctx, users); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteUser removes every account named username and saves.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	users := s.LoadUsers(ctx)
	users = slices.DeleteFunc(users, func(u domain.UserAccount) bool { return u.Username == username })
	return s.SaveUsers(ctx, users)
}
