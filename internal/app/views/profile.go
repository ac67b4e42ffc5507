package views

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

// ProfileView is the own-profile screen
type ProfileView struct {
	api      *api.Client
	sessions *session.Store

	User    *models.User
	Name    string
	Avatar  string
	Loading bool
	Saved   bool
	Err     string
}

// NewProfileView creates the profile screen controller
func NewProfileView(client *api.Client, sessions *session.Store) *ProfileView {
	return &ProfileView{api: client, sessions: sessions}
}

// Load fetches the profile and seeds the form fields
func (v *ProfileView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	user, err := v.api.GetMyProfile(ctx)
	if err != nil {
		v.Err = errorMessage(err, "Could not load the profile.")
		return err
	}

	v.User = user
	v.Name = user.Name
	v.Avatar = user.AvatarURL
	return nil
}

// Save submits the edited fields, then mirrors the result into the persisted
// session so the header shows the new name immediately.
func (v *ProfileView) Save(ctx context.Context) error {
	v.Err = ""
	v.Saved = false
	v.Loading = true
	defer func() { v.Loading = false }()

	user, err := v.api.UpdateMyProfile(ctx, api.UpdateProfileRequest{
		Name:   v.Name,
		Avatar: v.Avatar,
	})
	if err != nil {
		v.Err = errorMessage(err, "Could not update the profile.")
		return err
	}
	v.User = user
	v.Saved = true

	if current := v.sessions.Current(); current != nil {
		current.User.Name = user.Name
		current.User.AvatarURL = user.AvatarURL
		if err := v.sessions.Save(current); err != nil {
			// The backend accepted the edit; a stale header is tolerable
			v.Err = "Profile updated, but the stored session could not be refreshed."
		}
	}
	return nil
}

// ChangePasswordView is the password change screen
type ChangePasswordView struct {
	api *api.Client

	OldPassword     string
	NewPassword     string
	ConfirmPassword string
	Loading         bool
	Changed         bool
	Err             string
}

// NewChangePasswordView creates the password change controller
func NewChangePasswordView(client *api.Client) *ChangePasswordView {
	return &ChangePasswordView{api: client}
}

// Submit validates the confirmation locally, then changes the password. A
// mismatch never reaches the network.
func (v *ChangePasswordView) Submit(ctx context.Context) error {
	v.Err = ""
	v.Changed = false

	if v.NewPassword != v.ConfirmPassword {
		v.Err = "New passwords do not match."
		return apperrors.NewValidationError(apperrors.ErrPasswordMismatch, v.Err)
	}

	v.Loading = true
	defer func() { v.Loading = false }()

	err := v.api.ChangePassword(ctx, api.ChangePasswordRequest{
		OldPassword: v.OldPassword,
		NewPassword: v.NewPassword,
	})
	if err != nil {
		v.Err = errorMessage(err, "Could not change the password.")
		return err
	}

	v.Changed = true
	v.OldPassword = ""
	v.NewPassword = ""
	v.ConfirmPassword = ""
	return nil
}
