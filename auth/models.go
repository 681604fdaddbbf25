package auth

import (
	"time"

	"github.com/jrsteele09/kogase-admin/credentials"
	"golang.org/x/oauth2"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and token refresh.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"`
	UserID       string `json:"userId,omitempty"`
	DeviceID     string `json:"deviceId"`
}

// OAuthToken converts the response into the stored credential pair. Expiry
// is taken from the access token's exp claim, the same source the store
// reads it back from, so expiresAt is informational only.
func (r *AuthResponse) OAuthToken() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  r.Token,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, ok := credentials.TokenExpiry(r.Token); ok {
		token.Expiry = exp
	}
	return token
}

// Device is a client installation known to the backend.
type Device struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"deviceId"`
	DeviceType string    `json:"deviceType"`
	DeviceName string    `json:"deviceName"`
	OS         string    `json:"os"`
	OSVersion  string    `json:"osVersion"`
	AppVersion string    `json:"appVersion"`
	LastSeen   time.Time `json:"lastSeen"`
	IsActive   bool      `json:"isActive"`
	UserID     string    `json:"userId,omitempty"`
	ProjectID  string    `json:"projectId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type registerDeviceRequest struct {
	DeviceID   string `json:"deviceId"`
	DeviceType string `json:"deviceType"`
	DeviceName string `json:"deviceName"`
	OS         string `json:"os"`
	OSVersion  string `json:"osVersion"`
	AppVersion string `json:"appVersion"`
	ProjectID  string `json:"projectId"`
}

// Session is a sign-in session of a user on a device.
type Session struct {
	ID        string     `json:"id"`
	DeviceID  string     `json:"deviceId"`
	UserID    string     `json:"userId,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	IPAddress string     `json:"ipAddress"`
	Location  string     `json:"location,omitempty"`
	IsActive  bool       `json:"isActive"`
	ProjectID string     `json:"projectId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type createSessionRequest struct {
	ProjectID string `json:"projectId"`
	DeviceID  string `json:"deviceId"`
}

type logoutRequest struct {
	DeviceID string `json:"deviceId"`
}
