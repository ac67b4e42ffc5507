package views

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
)

// AdminUsersView is the admin user management table. Every mutation is
// followed by a full list reload rather than a local patch.
type AdminUsersView struct {
	api *api.Client

	Users   []models.User
	Loading bool
	Err     string
}

// NewAdminUsersView creates the admin user table controller
func NewAdminUsersView(client *api.Client) *AdminUsersView {
	return &AdminUsersView{api: client}
}

// Load fetches every account
func (v *AdminUsersView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	users, err := v.api.ListUsers(ctx)
	if err != nil {
		v.Err = errorMessage(err, "Could not load users.")
		return err
	}
	v.Users = users
	return nil
}

// Update edits an account, then reloads the table
func (v *AdminUsersView) Update(ctx context.Context, id string, name string, role models.UserRole, status models.UserStatus) error {
	v.Err = ""

	_, err := v.api.UpdateUser(ctx, id, api.UpdateUserRequest{
		Name:   name,
		Role:   role,
		Status: status,
	})
	if err != nil {
		v.Err = errorMessage(err, "Could not update the user.")
		return err
	}
	return v.Load(ctx)
}

// SetBlocked blocks or unblocks an account, then reloads the table
func (v *AdminUsersView) SetBlocked(ctx context.Context, id string, blocked bool) error {
	v.Err = ""

	status := models.UserStatusActive
	if blocked {
		status = models.UserStatusBlocked
	}
	if _, err := v.api.BlockUser(ctx, id, status); err != nil {
		v.Err = errorMessage(err, "Could not change the user's status.")
		return err
	}
	return v.Load(ctx)
}

// Delete removes an account, then reloads the table
func (v *AdminUsersView) Delete(ctx context.Context, id string) error {
	v.Err = ""

	if err := v.api.DeleteUser(ctx, id); err != nil {
		v.Err = errorMessage(err, "Could not delete the user.")
		return err
	}
	return v.Load(ctx)
}

// AdminClubsView is the admin club moderation table
type AdminClubsView struct {
	api *api.Client

	Clubs   []models.Club
	Loading bool
	Err     string
}

// NewAdminClubsView creates the admin club table controller
func NewAdminClubsView(client *api.Client) *AdminClubsView {
	return &AdminClubsView{api: client}
}

// Load fetches every club
func (v *AdminClubsView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	clubs, err := v.api.ListClubs(ctx)
	if err != nil {
		v.Err = errorMessage(err, "Could not load clubs.")
		return err
	}
	v.Clubs = clubs
	return nil
}

// Approve approves a pending club, then reloads
func (v *AdminClubsView) Approve(ctx context.Context, id string) error {
	v.Err = ""
	if err := v.api.ApproveClub(ctx, id); err != nil {
		v.Err = errorMessage(err, "Could not approve the club.")
		return err
	}
	return v.Load(ctx)
}

// Reject rejects a pending club, then reloads
func (v *AdminClubsView) Reject(ctx context.Context, id string) error {
	v.Err = ""
	if err := v.api.RejectClub(ctx, id); err != nil {
		v.Err = errorMessage(err, "Could not reject the club.")
		return err
	}
	return v.Load(ctx)
}

// Delete removes a club, then reloads
func (v *AdminClubsView) Delete(ctx context.Context, id string) error {
	v.Err = ""
	if err := v.api.DeleteClub(ctx, id); err != nil {
		v.Err = errorMessage(err, "Could not delete the club.")
		return err
	}
	return v.Load(ctx)
}
