package auth

import (
	"time"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// DeviceInfo describes the client a session was created from.
// Stored on Session for display ("Mom's iPad") and for security review.
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, web

	Platform        string `json:"platform"`         // iOS, Android, Windows, macOS, Linux, Web
	PlatformVersion string `json:"platform_version"` // 17.2, 14.0, 11, etc.

	ClientName    string `json:"client_name"`    // FamiLes Web, FamiLes Mobile
	ClientVersion string `json:"client_version"` // 1.0.0
	ClientBuild   string `json:"client_build"`   // 245 (optional)

	DeviceName  string `json:"device_name"`  // Mom's iPad, Living Room PC
	DeviceModel string `json:"device_model"` // iPad Air, Pixel 8

	// Browser-specific (for web clients)
	BrowserName    string `json:"browser_name"`
	BrowserVersion string `json:"browser_version"`
}

// IsValid performs basic validation on the device info.
func (d DeviceInfo) IsValid() bool {
	// At minimum, we need device type and platform
	return d.DeviceType != "" && d.Platform != ""
}
