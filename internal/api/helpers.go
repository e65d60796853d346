package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// AuthorizedInput is the request shape for endpoints with no parameters
// beyond the bearer token.
type AuthorizedInput struct {
	Authorization string `header:"Authorization"`
}

// authenticateRequest validates the Authorization header and returns the
// authenticated user ID.
func (s *Server) authenticateRequest(authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.services.Auth.VerifyAccessToken(parts[1])
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims.UserID, nil
}

// requireProfileOwner verifies the authenticated account owns the given
// profile. Returns the forbidden error from the profile service otherwise.
func (s *Server) requireProfileOwner(ctx context.Context, userID, profileID string) error {
	_, err := s.services.Profile.GetProfile(ctx, userID, profileID)
	return err
}
