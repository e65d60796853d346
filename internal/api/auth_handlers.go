package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/auth"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Create account",
		Description: "Creates a new family account with its primary reader profile and logs the device in",
		Tags:        []string{"Authentication"},
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Authenticates an account and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a new token pair",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Revokes the session belonging to the given refresh token",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "changePassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/password",
		Summary:     "Change password",
		Description: "Changes the account password and revokes all existing sessions",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleChangePassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/api/v1/auth/account",
		Summary:     "Delete account",
		Description: "Permanently deletes the account, all its profiles and their data",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAccount)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/sessions",
		Summary:     "List sessions",
		Description: "Returns the account's active sessions",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSessions)
}

// === DTOs ===

// DeviceInfo contains device metadata for session tracking.
type DeviceInfo struct {
	DeviceType      string `json:"device_type,omitempty" validate:"omitempty,max=50" doc:"Device type (mobile, tablet, desktop, web)"`
	Platform        string `json:"platform,omitempty" validate:"omitempty,max=50" doc:"Platform (iOS, Android, Windows, macOS, Linux, Web)"`
	PlatformVersion string `json:"platform_version,omitempty" validate:"omitempty,max=50" doc:"Platform version"`
	ClientName      string `json:"client_name,omitempty" validate:"omitempty,max=100" doc:"Client name (FamiLes Web, etc.)"`
	ClientVersion   string `json:"client_version,omitempty" validate:"omitempty,max=50" doc:"Client version"`
	ClientBuild     string `json:"client_build,omitempty" validate:"omitempty,max=50" doc:"Client build number"`
	DeviceName      string `json:"device_name,omitempty" validate:"omitempty,max=100" doc:"Human-readable device name"`
	DeviceModel     string `json:"device_model,omitempty" validate:"omitempty,max=100" doc:"Device model"`
	BrowserName     string `json:"browser_name,omitempty" validate:"omitempty,max=100" doc:"Browser name (for web clients)"`
	BrowserVersion  string `json:"browser_version,omitempty" validate:"omitempty,max=50" doc:"Browser version (for web clients)"`
}

// SignupRequest is the request body for account creation.
type SignupRequest struct {
	Email       string     `json:"email" validate:"required,email,max=254" doc:"Account email address"`
	Password    string     `json:"password" validate:"required,min=8,max=1024" doc:"Account password"`
	DisplayName string     `json:"display_name" validate:"required,min=1,max=64" doc:"Display name, also used for the primary profile"`
	DeviceInfo  DeviceInfo `json:"device_info,omitempty" doc:"Client device info"`
}

// SignupInput wraps the signup request with headers for Huma.
type SignupInput struct {
	Body          SignupRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email      string     `json:"email" validate:"required,email,max=254" doc:"Account email"`
	Password   string     `json:"password" validate:"required,max=1024" doc:"Account password"`
	DeviceInfo DeviceInfo `json:"device_info,omitempty" doc:"Client device info"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" validate:"required" doc:"Refresh token"`
	}
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token,omitempty" doc:"Refresh token of the session to revoke"`
	}
}

// ChangePasswordInput wraps the password change request for Huma.
type ChangePasswordInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		CurrentPassword string `json:"current_password" validate:"required" doc:"Current password"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=1024" doc:"New password"`
	}
}

// DeleteAccountInput wraps the account deletion request for Huma.
type DeleteAccountInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Password string `json:"password" validate:"required" doc:"Current password, required to confirm deletion"`
	}
}

// UserResponse contains account information in auth responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"Account ID"`
	Email       string    `json:"email" doc:"Account email"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	LastLoginAt time.Time `json:"last_login_at" doc:"Last login timestamp"`
}

// AuthResponse contains authentication tokens and account info.
type AuthResponse struct {
	AccessToken  string           `json:"access_token" doc:"PASETO access token"`
	RefreshToken string           `json:"refresh_token" doc:"Refresh token"`
	SessionID    string           `json:"session_id" doc:"Session identifier"`
	TokenType    string           `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int              `json:"expires_in" doc:"Access token expiry in seconds"`
	User         UserResponse     `json:"user" doc:"Authenticated account"`
	Profile      *ProfileResponse `json:"profile,omitempty" doc:"Primary profile, present on signup"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// SessionResponse describes one active session.
type SessionResponse struct {
	ID         string    `json:"id" doc:"Session ID"`
	DeviceName string    `json:"device_name,omitempty" doc:"Device name"`
	ClientName string    `json:"client_name,omitempty" doc:"Client name"`
	Platform   string    `json:"platform,omitempty" doc:"Platform"`
	IPAddress  string    `json:"ip_address,omitempty" doc:"Last known IP"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation timestamp"`
	ExpiresAt  time.Time `json:"expires_at" doc:"Expiry timestamp"`
}

// SessionListOutput wraps the session list for Huma.
type SessionListOutput struct {
	Body struct {
		Sessions []SessionResponse `json:"sessions" doc:"Active sessions"`
	}
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*AuthOutput, error) {
	ip := extractIP(input.XForwardedFor, input.XRealIP)
	if !s.authRateLimiter.Allow(ip) {
		return nil, domainerrors.RateLimited("too many signup attempts")
	}

	resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
		DeviceInfo:  mapDeviceInfo(input.Body.DeviceInfo),
		IPAddress:   ip,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	ip := extractIP(input.XForwardedFor, input.XRealIP)
	if !s.authRateLimiter.Allow(ip) {
		return nil, domainerrors.RateLimited("too many login attempts")
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:      input.Body.Email,
		Password:   input.Body.Password,
		DeviceInfo: mapDeviceInfo(input.Body.DeviceInfo),
		IPAddress:  ip,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleChangePassword(ctx context.Context, input *ChangePasswordInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.ChangePassword(ctx, userID, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password changed; all sessions revoked"}}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *DeleteAccountInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.DeleteAccount(ctx, userID, input.Body.Password); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}

func (s *Server) handleListSessions(ctx context.Context, input *AuthorizedInput) (*SessionListOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Session.ListUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &SessionListOutput{}
	out.Body.Sessions = make([]SessionResponse, len(sessions))
	for i, sess := range sessions {
		out.Body.Sessions[i] = SessionResponse{
			ID:         sess.ID,
			DeviceName: sess.DeviceName,
			ClientName: sess.ClientName,
			Platform:   sess.Platform,
			IPAddress:  sess.IPAddress,
			CreatedAt:  sess.CreatedAt,
			ExpiresAt:  sess.ExpiresAt,
		}
	}
	return out, nil
}

// === Helpers ===

func mapDeviceInfo(d DeviceInfo) auth.DeviceInfo {
	return auth.DeviceInfo{
		DeviceType:      d.DeviceType,
		Platform:        d.Platform,
		PlatformVersion: d.PlatformVersion,
		ClientName:      d.ClientName,
		ClientVersion:   d.ClientVersion,
		ClientBuild:     d.ClientBuild,
		DeviceName:      d.DeviceName,
		DeviceModel:     d.DeviceModel,
		BrowserName:     d.BrowserName,
		BrowserVersion:  d.BrowserVersion,
	}
}

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	out := AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		User: UserResponse{
			ID:          resp.User.ID,
			Email:       resp.User.Email,
			DisplayName: resp.User.DisplayName,
			CreatedAt:   resp.User.CreatedAt,
			LastLoginAt: resp.User.LastLoginAt,
		},
	}
	if resp.Profile != nil {
		profile := mapProfileResponse(resp.Profile)
		out.Profile = &profile
	}
	return out
}

func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
