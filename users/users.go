package users

import (
	"strings"
	"time"
)

// UserType is the backend's classification of an account.
type UserType int

const (
	UserTypeAdmin     UserType = 0
	UserTypeDeveloper UserType = 1
	UserTypePlayer    UserType = 2
)

func (t UserType) String() string {
	switch t {
	case UserTypeAdmin:
		return "admin"
	case UserTypeDeveloper:
		return "developer"
	case UserTypePlayer:
		return "player"
	}
	return "unknown"
}

// UserStatus is the account lifecycle state, changed through the
// activate/deactivate/suspend endpoints.
type UserStatus int

const (
	UserStatusActive    UserStatus = 0
	UserStatusInactive  UserStatus = 1
	UserStatusSuspended UserStatus = 2
)

func (s UserStatus) String() string {
	switch s {
	case UserStatusActive:
		return "active"
	case UserStatusInactive:
		return "inactive"
	case UserStatusSuspended:
		return "suspended"
	}
	return "unknown"
}

// User is the backend's IAM user. The console only ever holds a cached copy;
// the backend is authoritative.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DisplayName string     `json:"displayName,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	Type        UserType   `json:"type"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateUserRequest is the admin-side user creation payload.
type CreateUserRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Type      UserType `json:"type"`
}

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateUserRequest carries the mutable profile fields.
type UpdateUserRequest struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Name returns the display name, falling back to "First Last" and then the
// email address.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}
