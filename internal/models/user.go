// Package models contains data structures for the platform's domain entities.
package models

import "time"

// Available user roles, in ascending order of privilege.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a registered account. The role field gates what the user may
// mutate; Superuser is an operator-level flag treated as admin everywhere.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	Bio       string    `json:"bio"`
	Role      string    `gorm:"size:20;not null;default:user" json:"role"`
	Superuser bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u *User) IsModerator() bool { return u.Role == RoleModerator }
func (u *User) IsUser() bool      { return u.Role == RoleUser }

func (u User) String() string { return u.Username }

// PK returns the primary key, for diagnostic dumps.
func (u User) PK() uint { return u.ID }
