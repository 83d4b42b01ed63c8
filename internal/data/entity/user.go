package entity

import "github.com/google/uuid"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

var roleRank = map[UserRole]int{
	RoleCustomer: 1,
	RoleStaff:    2,
	RoleAdmin:    3,
}

// HasRole reports whether r grants at least the capabilities of want.
func (r UserRole) HasRole(want UserRole) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[want]
}

type User struct {
	SoftDeleteModel
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	FirstName    string   `db:"first_name"`
	LastName     string   `db:"last_name"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

// Caller is the authenticated principal a service operation runs on behalf of.
type Caller struct {
	UserID uuid.UUID
	Role   UserRole
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != uuid.Nil
}

func (c Caller) HasRole(want UserRole) bool {
	return c.IsAuthenticated() && c.Role.HasRole(want)
}
