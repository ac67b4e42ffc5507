package api

import (
	"context"
	"net/http"

	"github.com/tranminh/clubhub/internal/app/models"
)

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

// LoginRequest is the payload for signing in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the payload for editing the current user's profile
type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// UpdateUserRequest is the admin payload for editing any user. Zero-valued
// fields are omitted so a block/unblock call can send status alone.
type UpdateUserRequest struct {
	Name   string            `json:"name,omitempty"`
	Role   models.UserRole   `json:"role,omitempty"`
	Status models.UserStatus `json:"status,omitempty"`
}

// ChangePasswordRequest is the payload for changing the current password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Register creates an account and returns the resulting session
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.Session, error) {
	var session models.Session
	if err := c.doRaw(ctx, http.MethodPost, "/users/register", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Login authenticates and returns the resulting session
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.Session, error) {
	var session models.Session
	if err := c.doRaw(ctx, http.MethodPost, "/users/login", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetMyProfile returns the authenticated user's profile
func (c *Client) GetMyProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMyProfile edits the authenticated user's profile
func (c *Client) UpdateMyProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/users/profile", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the authenticated user's password
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/users/change-password", nil, req, nil)
}

// ListUsers returns every account (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users/", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a single account by id (admin only)
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser edits an account (admin only)
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/users/"+id, nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// BlockUser flips an account's status (admin only)
func (c *Client) BlockUser(ctx context.Context, id string, status models.UserStatus) (*models.User, error) {
	return c.UpdateUser(ctx, id, UpdateUserRequest{Status: status})
}

// DeleteUser removes an account (admin only)
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, nil)
}
