package models

import (
	"time"

	"github.com/google/uuid"
)

// User type enums. Anonymous and Cron never correspond to a users row; they
// are principal types resolved by the auth middleware.
const (
	UserTypeAnonymous = "Anonymous"
	UserTypeUser      = "User"
	UserTypeAdmin     = "Admin"
	UserTypeCron      = "Cron"
)

const (
	UserStatusActive  = "Active"
	UserStatusBlocked = "Blocked"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	UserType     string    `json:"user_type"`
	UserStatus   string    `json:"user_status"`
	EthAddress   string    `json:"eth_address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RequestUser is the resolved principal attached to a request by the auth
// middleware. ID is uuid.Nil for Anonymous and Cron principals.
type RequestUser struct {
	ID       uuid.UUID
	UserType string
}

// IsAdmin reports whether the principal has admin rights.
func (u RequestUser) IsAdmin() bool { return u.UserType == UserTypeAdmin }

// CanActAs reports whether the principal may act on a resource owned by
// ownerID: admins always, users only on their own resources.
func (u RequestUser) CanActAs(ownerID uuid.UUID) bool {
	if u.UserType == UserTypeAdmin {
		return true
	}
	return u.UserType == UserTypeUser && u.ID == ownerID
}
