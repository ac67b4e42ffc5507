package guard

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

// Access is the audience a route is open to
type Access int

const (
	// AccessPublic routes render for anyone
	AccessPublic Access = iota
	// AccessProtected routes need any authenticated session
	AccessProtected
	// AccessManager routes need the manager role
	AccessManager
	// AccessAdmin routes need the admin role
	AccessAdmin
)

// Well-known routes
const (
	RouteRoot           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteEvents         = "/event"
	RouteClubs          = "/club"
	RouteProfile        = "/profile"
	RouteChangePassword = "/change-password"
	RouteStudentHome    = "/student"
	RouteMessages       = "/messages"
	RouteAdminHome      = "/admin"
	RouteManagerClubs   = "/manager/clubs"
	RouteManagerReqs    = "/manager/requests"
)

// routeTable maps route prefixes to their access level. Detail routes such as
// /club/:id match through their list prefix.
var routeTable = map[string]Access{
	RouteLogin:          AccessPublic,
	RouteRegister:       AccessPublic,
	RouteEvents:         AccessPublic,
	RouteClubs:          AccessPublic,
	RouteProfile:        AccessProtected,
	RouteChangePassword: AccessProtected,
	RouteStudentHome:    AccessProtected,
	RouteMessages:       AccessProtected,
	RouteAdminHome:      AccessAdmin,
	RouteManagerClubs:   AccessManager,
	RouteManagerReqs:    AccessManager,
}

// Guard resolves a requested route to the route actually rendered, given the
// persisted session. No server round-trip happens here: token validity is
// discovered lazily by the first API call that needs it.
type Guard struct {
	sessions *session.Store
	logger   zerolog.Logger
}

// New creates a Guard over the given session store
func New(sessions *session.Store) *Guard {
	return &Guard{
		sessions: sessions,
		logger:   logger.With("guard"),
	}
}

// AccessFor returns the access level of a route
func AccessFor(route string) Access {
	if access, ok := routeTable[route]; ok {
		return access
	}
	// Detail routes inherit from their section prefix
	for prefix, access := range routeTable {
		if strings.HasPrefix(route, prefix+"/") {
			return access
		}
	}
	return AccessProtected
}

// Resolve returns the route to render for the requested route. A missing or
// corrupt session sends protected routes to /login (the corrupt file is
// cleared as a side effect of loading it); a role mismatch sends the user to
// the student dashboard, never back to login.
func (g *Guard) Resolve(route string) string {
	current, err := g.sessions.Load()

	if route == RouteRoot {
		return g.resolveRoot(current, err)
	}

	access := AccessFor(route)
	if access == AccessPublic {
		return route
	}

	if err != nil || !current.IsValid() {
		g.logger.Debug().Str("route", route).Msg("No session, redirecting to login")
		return RouteLogin
	}

	switch access {
	case AccessAdmin:
		if current.User.Role != models.RoleAdmin {
			return RouteStudentHome
		}
	case AccessManager:
		if current.User.Role != models.RoleManager {
			return RouteStudentHome
		}
	}

	return route
}

// resolveRoot picks the landing route: events when logged out, login when the
// stored session was corrupt, otherwise the role's dashboard.
func (g *Guard) resolveRoot(current *models.Session, err error) string {
	if errors.Is(err, apperrors.ErrSessionCorrupt) {
		return RouteLogin
	}
	if err != nil || !current.IsValid() {
		return RouteEvents
	}
	if current.User.Role == models.RoleAdmin {
		return RouteAdminHome
	}
	return RouteStudentHome
}

// HomeFor returns the dashboard route for a role, used after login
func HomeFor(role models.UserRole) string {
	if role == models.RoleAdmin {
		return RouteAdminHome
	}
	return RouteStudentHome
}

// Logout clears the persisted session and returns the login route
func (g *Guard) Logout() string {
	if err := g.sessions.Clear(); err != nil {
		g.logger.Error().Err(err).Msg("Failed to clear session on logout")
	}
	return RouteLogin
}
