package domain

import "time"

// User is an authenticated account. Gamification state lives on Profile,
// not here; one account may own several profiles for family members
// sharing a login.
type User struct {
	Syncable
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Session represents an active user session with refresh token.
// Each device gets its own session, so you can see what's connected.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`

	// Device information, structured data from the client.
	DeviceType      string `json:"device_type"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	ClientName      string `json:"client_name"`
	ClientVersion   string `json:"client_version"`
	ClientBuild     string `json:"client_build,omitempty"`
	DeviceName      string `json:"device_name,omitempty"`
	DeviceModel     string `json:"device_model,omitempty"`
	BrowserName     string `json:"browser_name,omitempty"`
	BrowserVersion  string `json:"browser_version,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DisplayName returns a human-readable description of the device.
func (s *Session) DisplayName() string {
	if s.DeviceName != "" {
		return s.DeviceName
	}

	if s.DeviceModel != "" {
		if s.PlatformVersion != "" {
			return s.DeviceModel + " - " + s.Platform + " " + s.PlatformVersion
		}
		return s.DeviceModel
	}

	if s.Platform != "" {
		if s.PlatformVersion != "" {
			return s.Platform + " " + s.PlatformVersion
		}
		return s.Platform
	}

	if s.ClientVersion != "" {
		return s.ClientName + " " + s.ClientVersion
	}
	if s.ClientName != "" {
		return s.ClientName
	}

	return "Unknown Device"
}
