// Package auth checks credentials against the stored user accounts and keeps
// track of the logged-in session.
package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"toolcrib/internal/store"
	"toolcrib/pkg/domain"
)

// GuestName is the display name of a guest session.
const GuestName = "User"

// UserSource supplies the stored accounts.
type UserSource interface {
	LoadUsers(ctx context.Context) []domain.UserAccount
}

// Session is the currently logged-in user.
type Session struct {
	Username string
	Role     domain.Role
}

// Gate authenticates users and answers role questions about the session.
type Gate struct {
	users   UserSource
	logger  *slog.Logger
	current *Session
}

// NewGate returns a gate reading accounts from users.
func NewGate(users UserSource, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{users: users, logger: logger}
}

// Login authenticates username. The first account with that name decides:
// an empty stored hash logs in without a password, otherwise the password
// must match. It reports whether a session was started.
func (g *Gate) Login(ctx context.Context, username, password string) bool {
	for _, u := range g.users.LoadUsers(ctx) {
		if u.Username != username {
			continue
		}
		if u.PasswordHash != "" && !VerifyPassword(u.PasswordHash, password) {
			g.logger.Info("login rejected", "user", username)
			return false
		}
		g.current = &Session{Username: u.Username, Role: u.Role}
		g.logger.Info("login", "user", u.Username, "role", string(u.Role))
		return true
	}
	g.logger.Info("login rejected", "user", username, "reason", "unknown user")
	return false
}

// LoginAsGuest starts an unprivileged guest session.
func (g *Gate) LoginAsGuest() {
	g.current = &Session{Username: GuestName, Role: domain.RoleUser}
	g.logger.Info("guest login")
}

// VerifyAdminPassword reports whether password belongs to any admin
// account. Passwordless admins never match.
func (g *Gate) VerifyAdminPassword(ctx context.Context, password string) bool {
	for _, u := range g.users.LoadUsers(ctx) {
		if u.Role == domain.RoleAdmin && u.PasswordHash != "" && VerifyPassword(u.PasswordHash, password) {
			return true
		}
	}
	return false
}

// Logout ends the current session.
func (g *Gate) Logout() {
	if g.current != nil {
		g.logger.Info("logout", "user", g.current.Username)
	}
	g.current = nil
}

// Current returns the logged-in session.
func (g *Gate) Current() (Session, bool) {
	if g.current == nil {
		return Session{}, false
	}
	return *g.current, true
}

// IsAdmin reports whether the session has the admin role.
func (g *Gate) IsAdmin() bool {
	return g.current != nil && g.current.Role == domain.RoleAdmin
}

// IsLagerAdmin reports whether the session may manage the storeroom.
func (g *Gate) IsLagerAdmin() bool {
	return g.current != nil && (g.current.Role == domain.RoleAdmin || g.current.Role == domain.RoleLager)
}

// VerifyPassword compares password against a stored hash. Hex SHA-256
// digests are the native format; bcrypt hashes are accepted for accounts
// provisioned by other tools.
func VerifyPassword(stored, password string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	digest := store.HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(digest)) == 1
}

func isBcrypt(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}
