package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
)

func guardWith(t *testing.T, current *models.Session) *Guard {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	if current != nil {
		require.NoError(t, store.Save(current))
	}
	return New(store)
}

func sessionFor(role models.UserRole) *models.Session {
	return &models.Session{
		Token: "t",
		User:  models.User{ID: "u1", Name: "Test", Role: role},
	}
}

func TestPublicRoutesRenderWithoutSession(t *testing.T) {
	g := guardWith(t, nil)

	for _, route := range []string{RouteLogin, RouteRegister, RouteEvents, RouteClubs, RouteClubs + "/c1"} {
		assert.Equal(t, route, g.Resolve(route), "route %s", route)
	}
}

func TestProtectedRoutesRedirectToLoginWithoutSession(t *testing.T) {
	g := guardWith(t, nil)

	for _, route := range []string{RouteProfile, RouteMessages, RouteStudentHome, RouteAdminHome, RouteManagerClubs} {
		assert.Equal(t, RouteLogin, g.Resolve(route), "route %s", route)
	}
}

func TestRoleMismatchLandsOnStudentDashboardNotLogin(t *testing.T) {
	g := guardWith(t, sessionFor(models.RoleStudent))

	assert.Equal(t, RouteStudentHome, g.Resolve(RouteAdminHome))
	assert.Equal(t, RouteStudentHome, g.Resolve(RouteManagerClubs))
	assert.Equal(t, RouteStudentHome, g.Resolve(RouteManagerReqs))
}

func TestManagerCannotEnterAdminAndViceVersa(t *testing.T) {
	manager := guardWith(t, sessionFor(models.RoleManager))
	assert.Equal(t, RouteManagerClubs, manager.Resolve(RouteManagerClubs))
	assert.Equal(t, RouteStudentHome, manager.Resolve(RouteAdminHome))

	admin := guardWith(t, sessionFor(models.RoleAdmin))
	assert.Equal(t, RouteAdminHome, admin.Resolve(RouteAdminHome))
	assert.Equal(t, RouteStudentHome, admin.Resolve(RouteManagerClubs))
}

func TestRootRouteByAudience(t *testing.T) {
	assert.Equal(t, RouteEvents, guardWith(t, nil).Resolve(RouteRoot))
	assert.Equal(t, RouteStudentHome, guardWith(t, sessionFor(models.RoleStudent)).Resolve(RouteRoot))
	assert.Equal(t, RouteStudentHome, guardWith(t, sessionFor(models.RoleManager)).Resolve(RouteRoot))
	assert.Equal(t, RouteAdminHome, guardWith(t, sessionFor(models.RoleAdmin)).Resolve(RouteRoot))
}

func TestRootWithCorruptSessionGoesToLogin(t *testing.T) {
	store := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("garbage"), 0o600))

	g := New(store)
	assert.Equal(t, RouteLogin, g.Resolve(RouteRoot))
}

func TestDetailRoutesInheritSectionAccess(t *testing.T) {
	assert.Equal(t, AccessPublic, AccessFor(RouteEvents+"/e42"))
	assert.Equal(t, AccessPublic, AccessFor(RouteClubs+"/c9"))
	assert.Equal(t, AccessManager, AccessFor(RouteManagerClubs+"/c9"))
	assert.Equal(t, AccessProtected, AccessFor("/definitely-unknown"))
}

func TestLogoutClearsSession(t *testing.T) {
	store := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	require.NoError(t, store.Save(sessionFor(models.RoleStudent)))

	g := New(store)
	assert.Equal(t, RouteLogin, g.Logout())
	assert.Nil(t, store.Current())
	assert.Equal(t, RouteLogin, g.Resolve(RouteProfile))
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, RouteAdminHome, HomeFor(models.RoleAdmin))
	assert.Equal(t, RouteStudentHome, HomeFor(models.RoleManager))
	assert.Equal(t, RouteStudentHome, HomeFor(models.RoleStudent))
}
