package model

import "time"

type User struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	PhoneNumber        string
	IsActive           bool
	EmailConfirmed     bool
	LastLoginAt        *time.Time
	RefreshToken       *string
	RefreshTokenExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AuthUser is the identity extracted from a validated access token.
type AuthUser struct {
	ID       int64
	Username string
	Email    string
	Roles    []string
}

func (u *AuthUser) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}
