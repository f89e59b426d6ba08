// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
