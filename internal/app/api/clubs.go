package api

import (
	"context"
	"net/http"

	"github.com/tranminh/clubhub/internal/app/models"
)

// CreateClubRequest is the manager payload for creating a club; the club
// starts in pending state until an admin approves it.
type CreateClubRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// UpdateClubRequest is the manager payload for editing a club
type UpdateClubRequest struct {
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// AddMemberRequest is the payload for adding a user to a club
type AddMemberRequest struct {
	ClubID string `json:"clubId"`
	UserID string `json:"userId"`
}

// ListClubs returns every visible club
func (c *Client) ListClubs(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	if err := c.do(ctx, http.MethodGet, "/clubs", nil, nil, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// GetClub returns a single club with its member list
func (c *Client) GetClub(ctx context.Context, id string) (*models.Club, error) {
	var club models.Club
	if err := c.do(ctx, http.MethodGet, "/clubs/"+id, nil, nil, &club); err != nil {
		return nil, err
	}
	return &club, nil
}

// CreateClub creates a club in pending state (manager only)
func (c *Client) CreateClub(ctx context.Context, req CreateClubRequest) (*models.Club, error) {
	var club models.Club
	if err := c.do(ctx, http.MethodPost, "/clubs", nil, req, &club); err != nil {
		return nil, err
	}
	return &club, nil
}

// UpdateClub edits a club (its manager only)
func (c *Client) UpdateClub(ctx context.Context, id string, req UpdateClubRequest) (*models.Club, error) {
	var club models.Club
	if err := c.do(ctx, http.MethodPut, "/clubs/"+id, nil, req, &club); err != nil {
		return nil, err
	}
	return &club, nil
}

// ApproveClub marks a pending club approved (admin only)
func (c *Client) ApproveClub(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/clubs/"+id+"/approve", nil, nil, nil)
}

// RejectClub marks a pending club rejected (admin only)
func (c *Client) RejectClub(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/clubs/"+id+"/reject", nil, nil, nil)
}

// DeleteClub removes a club (admin only)
func (c *Client) DeleteClub(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/clubs/"+id, nil, nil, nil)
}

// AddMember adds a user to a club's member list
func (c *Client) AddMember(ctx context.Context, req AddMemberRequest) error {
	return c.do(ctx, http.MethodPost, "/clubs/add-member", nil, req, nil)
}

// MyManagedClubs returns the clubs the current user manages, pending ones
// included.
func (c *Client) MyManagedClubs(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	if err := c.do(ctx, http.MethodGet, "/clubs/my-clubs", nil, nil, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// MyClubs returns the clubs the current user is a member of
func (c *Client) MyClubs(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	if err := c.do(ctx, http.MethodGet, "/clubs/joined", nil, nil, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}
