package domain

// Role grants permissions to a user account.
type Role string

// Known roles. "lager" is the storeroom role.
const (
	RoleAdmin Role = "admin"
	RoleLager Role = "lager"
	RoleUser  Role = "user"
)

// UserAccount is a stored credential record. An empty PasswordHash means the
// account logs in without a password.
type UserAccount struct {
	Username     string
	PasswordHash string
	Role         Role
}
