package services

import (
	"context"
	"fmt"

	"github.com/Nerzal/gocloak/v13"
	"github.com/ak/nutriplan/internal/infrastructure/config"
)

// TokenPair is the access/refresh token pair minted for a user session.
// UserID and Email are filled from the identity provider's userinfo
// endpoint when available so the platform can mint its own token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
}

// CreateClientUserRequest carries the fields needed to provision a
// client user when a coach onboards them.
type CreateClientUserRequest struct {
	Username string   `json:"username" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Roles    []string `json:"roles"`
}

// IdentityService handles Keycloak IAM operations
type IdentityService interface {
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	CreateClientUser(ctx context.Context, req CreateClientUserRequest) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

type identityService struct {
	client *gocloak.GoCloak
	config config.KeycloakConfig
	token  *gocloak.JWT
}

// NewIdentityService creates a new identity service
func NewIdentityService(cfg config.KeycloakConfig) (IdentityService, error) {
	client := gocloak.NewClient(cfg.URL)

	// Get admin token
	ctx := context.Background()
	token, err := client.LoginAdmin(ctx, cfg.AdminUser, cfg.AdminPass, "master")
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Keycloak: %w", err)
	}

	return &identityService{
		client: client,
		config: cfg,
		token:  token,
	}, nil
}

func (s *identityService) refreshAdminToken(ctx context.Context) error {
	token, err := s.client.LoginAdmin(ctx, s.config.AdminUser, s.config.AdminPass, "master")
	if err != nil {
		return fmt.Errorf("failed to refresh admin token: %w", err)
	}
	s.token = token
	return nil
}

func (s *identityService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	token, err := s.client.Login(ctx, s.config.ClientID, s.config.ClientSecret, s.config.Realm, username, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	pair := &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
	}

	// Identity fields are best-effort; a userinfo failure must not fail login.
	if info, err := s.client.GetUserInfo(ctx, token.AccessToken, s.config.Realm); err == nil {
		if info.Sub != nil {
			pair.UserID = *info.Sub
		}
		if info.Email != nil {
			pair.Email = *info.Email
		}
	}

	return pair, nil
}

func (s *identityService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.client.RefreshToken(ctx, refreshToken, s.config.ClientID, s.config.ClientSecret, s.config.Realm)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return &TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
	}, nil
}

func (s *identityService) CreateClientUser(ctx context.Context, req CreateClientUserRequest) (string, error) {
	if err := s.refreshAdminToken(ctx); err != nil {
		return "", err
	}

	enabled := true
	emailVerified := true
	user := gocloak.User{
		Username:      &req.Username,
		Email:         &req.Email,
		Enabled:       &enabled,
		EmailVerified: &emailVerified,
	}

	userID, err := s.client.CreateUser(ctx, s.token.AccessToken, s.config.Realm, user)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	// Set password
	if err := s.client.SetPassword(ctx, s.token.AccessToken, userID, s.config.Realm, req.Password, false); err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	// Assign roles
	if len(req.Roles) > 0 {
		roles := make([]gocloak.Role, 0, len(req.Roles))
		for _, name := range req.Roles {
			role, err := s.client.GetRealmRole(ctx, s.token.AccessToken, s.config.Realm, name)
			if err != nil {
				return "", fmt.Errorf("failed to look up role %s: %w", name, err)
			}
			roles = append(roles, *role)
		}
		if err := s.client.AddRealmRoleToUser(ctx, s.token.AccessToken, s.config.Realm, userID, roles); err != nil {
			return "", fmt.Errorf("failed to assign roles: %w", err)
		}
	}

	return userID, nil
}

func (s *identityService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.refreshAdminToken(ctx); err != nil {
		return err
	}
	if err := s.client.DeleteUser(ctx, s.token.AccessToken, s.config.Realm, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
