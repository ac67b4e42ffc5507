package views

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/guard"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
)

// LoginView is the sign-in screen
type LoginView struct {
	api      *api.Client
	sessions *session.Store

	Email    string
	Password string
	Loading  bool
	Err      string
}

// NewLoginView creates the login screen controller
func NewLoginView(client *api.Client, sessions *session.Store) *LoginView {
	return &LoginView{api: client, sessions: sessions}
}

// Submit signs in, persists the session and returns the role's dashboard
// route: /admin for admins, /student for everyone else.
func (v *LoginView) Submit(ctx context.Context) (string, error) {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	result, err := v.api.Login(ctx, api.LoginRequest{
		Email:    v.Email,
		Password: v.Password,
	})
	if err != nil {
		v.Err = errorMessage(err, "Login failed")
		return "", err
	}

	if err := v.sessions.Save(result); err != nil {
		v.Err = "Could not persist the session."
		return "", err
	}

	return guard.HomeFor(result.User.Role), nil
}

// RegisterView is the account creation screen
type RegisterView struct {
	api *api.Client

	Name     string
	Email    string
	Password string
	Role     models.UserRole
	Loading  bool
	Err      string
}

// NewRegisterView creates the register screen controller; the role defaults
// to student.
func NewRegisterView(client *api.Client) *RegisterView {
	return &RegisterView{api: client, Role: models.RoleStudent}
}

// Submit registers the account and returns the login route on success
func (v *RegisterView) Submit(ctx context.Context) (string, error) {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	role := v.Role
	if role == "" {
		role = models.RoleStudent
	}

	_, err := v.api.Register(ctx, api.RegisterRequest{
		Name:     v.Name,
		Email:    v.Email,
		Password: v.Password,
		Role:     role,
	})
	if err != nil {
		v.Err = errorMessage(err, "Registration failed")
		return "", err
	}

	return guard.RouteLogin, nil
}
