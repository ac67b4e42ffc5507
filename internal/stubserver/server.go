package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/auth"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

// Config holds the backend's tunables
type Config struct {
	JWTSecret   string
	TokenExpiry time.Duration
	TokenIssuer string
}

// Server is the in-memory backend: a gin engine over a Store
type Server struct {
	store  *Store
	jwt    *auth.JWTService
	engine *gin.Engine
	logger zerolog.Logger
}

// New creates a Server around the given store
func New(store *Store, cfg Config) *Server {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "clubhub-dev-secret"
	}
	if cfg.TokenExpiry == 0 {
		cfg.TokenExpiry = 24 * time.Hour
	}
	if cfg.TokenIssuer == "" {
		cfg.TokenIssuer = "clubhub-stub"
	}

	s := &Server{
		store: store,
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:      cfg.JWTSecret,
			AccessTokenExp: cfg.TokenExpiry,
			TokenIssuer:    cfg.TokenIssuer,
		}),
		logger: logger.With("stubserver"),
	}
	s.engine = s.buildRouter()
	return s
}

// Handler exposes the router for httptest servers
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the backend on the given address
func (s *Server) Run(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Starting stub backend")
	return s.engine.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	authMW := middleware.NewAuthMiddleware(s.jwt, s.store)

	users := engine.Group("/users")
	{
		users.POST("/register", s.register)
		users.POST("/login", s.login)

		authed := users.Group("", authMW.JWTAuth())
		authed.GET("/profile", s.getProfile)
		authed.PUT("/profile", s.updateProfile)
		authed.PUT("/change-password", s.changePassword)

		admin := users.Group("", authMW.JWTAuth(), authMW.RoleRequired(models.RoleAdmin))
		admin.GET("/", s.listUsers)
		admin.GET("/:id", s.getUser)
		admin.PUT("/:id", s.updateUser)
		admin.DELETE("/:id", s.deleteUser)
	}

	// Club and event browsing is open; everything that mutates needs a session.
	clubs := engine.Group("/clubs")
	{
		clubs.GET("", s.listClubs)
		clubs.GET("/:id", s.getClub)
		clubs.GET("/my-clubs", authMW.JWTAuth(), s.myManagedClubs)
		clubs.GET("/joined", authMW.JWTAuth(), s.myClubs)
		clubs.POST("", authMW.JWTAuth(), authMW.RoleRequired(models.RoleManager), s.createClub)
		clubs.POST("/add-member", authMW.JWTAuth(), s.addMember)
		clubs.PUT("/:id", authMW.JWTAuth(), s.updateClub)
		clubs.PUT("/:id/approve", authMW.JWTAuth(), authMW.RoleRequired(models.RoleAdmin), s.approveClub)
		clubs.PUT("/:id/reject", authMW.JWTAuth(), authMW.RoleRequired(models.RoleAdmin), s.rejectClub)
		clubs.DELETE("/:id", authMW.JWTAuth(), authMW.RoleRequired(models.RoleAdmin), s.deleteClub)
	}

	events := engine.Group("/events")
	{
		events.GET("", s.listEvents)
		events.GET("/:id", s.getEvent)
		events.POST("/participants/:id", authMW.JWTAuth(), s.joinEvent)
	}

	requests := engine.Group("/requests", authMW.JWTAuth())
	{
		requests.GET("", s.listRequests)
		requests.GET("/my-clubs", s.myClubRequests)
		requests.GET("/stats", s.requestStats)
		requests.POST("", s.createRequest)
		requests.PUT("/:id/status", s.updateRequestStatus)
	}

	notifications := engine.Group("/notifications", authMW.JWTAuth())
	{
		notifications.GET("", s.listNotifications)
		notifications.GET("/unread-count", s.unreadCount)
		notifications.PATCH("/read-all", s.markAllNotificationsRead)
		notifications.PATCH("/:id/read", s.markNotificationRead)
	}

	messages := engine.Group("/messages", authMW.JWTAuth())
	{
		messages.GET("/users", s.searchMessageUsers)
		messages.GET("/threads", s.listThreads)
		messages.POST("/threads", s.createThread)
		messages.PUT("/threads/:key/pin", s.pinThread)
		messages.PUT("/threads/:key/unpin", s.unpinThread)
		messages.PUT("/threads/:key/read", s.markThreadRead)
		messages.GET("/threads/:key/messages", s.listThreadMessages)
		messages.POST("/threads/:key/messages", s.sendThreadMessage)
	}

	return engine
}

// respond wraps a success payload in the standard data envelope
func respond(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, gin.H{"data": payload})
}

// identify resolves the caller on routes where authentication is optional.
// Returns nil when no valid token is attached.
func (s *Server) identify(c *gin.Context) *models.User {
	if id := middleware.CurrentUserID(c); id != "" {
		if user, ok := s.store.UserByID(id); ok {
			return user
		}
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil
	}
	token, err := auth.ExtractToken(header)
	if err != nil {
		return nil
	}
	claims, err := s.jwt.ValidateAndExtractClaims(token)
	if err != nil {
		return nil
	}
	user, ok := s.store.UserByID(claims.UserID)
	if !ok {
		return nil
	}
	return user
}
