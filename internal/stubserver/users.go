package stubserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
	"github.com/tranminh/clubhub/internal/pkg/auth"
)

type registerRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type updateUserRequest struct {
	Name   string            `json:"name"`
	Role   models.UserRole   `json:"role"`
	Status models.UserStatus `json:"status"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// sessionResponse is the login/register body. Unlike every other endpoint it
// is not wrapped in the data envelope.
type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid registration payload"))
		return
	}

	role := req.Role
	switch role {
	case models.RoleStudent, models.RoleManager:
	case "":
		role = models.RoleStudent
	default:
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Unsupported role"))
		return
	}

	s.store.mu.Lock()
	if _, exists := s.store.userByEmail(req.Email); exists {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.NewConflictError("Email is already registered"))
		return
	}
	s.store.mu.Unlock()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	user := models.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   role,
		Status: models.UserStatusActive,
	}
	user.ID = s.store.AddUser(user, hash)

	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	s.logger.Info().Str("email", user.Email).Msg("Account registered")
	c.JSON(http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid login payload"))
		return
	}

	s.store.mu.Lock()
	acc, ok := s.store.userByEmail(req.Email)
	s.store.mu.Unlock()
	if !ok || !auth.CheckPassword(acc.PasswordHash, req.Password) {
		middleware.HandleAPIError(c, apperrors.ErrInvalidCredentials)
		return
	}
	if acc.Status == models.UserStatusBlocked {
		middleware.HandleAPIError(c, apperrors.ErrAccountBlocked)
		return
	}

	user := acc.User
	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) getProfile(c *gin.Context) {
	user, ok := s.store.UserByID(middleware.CurrentUserID(c))
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	respond(c, http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid profile payload"))
		return
	}

	s.store.mu.Lock()
	acc, ok := s.store.users[middleware.CurrentUserID(c)]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if req.Name != "" {
		acc.Name = req.Name
	}
	if req.Avatar != "" {
		acc.AvatarURL = req.Avatar
	}
	user := acc.User
	s.store.mu.Unlock()

	respond(c, http.StatusOK, user)
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid password payload"))
		return
	}

	s.store.mu.Lock()
	acc, ok := s.store.users[middleware.CurrentUserID(c)]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if !auth.CheckPassword(acc.PasswordHash, req.OldPassword) {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Current password is incorrect"))
		return
	}
	s.store.mu.Unlock()

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	s.store.mu.Lock()
	acc.PasswordHash = hash
	s.store.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"message": "Password changed"})
}

func (s *Server) listUsers(c *gin.Context) {
	s.store.mu.Lock()
	users := make([]models.User, 0, len(s.store.users))
	for _, acc := range s.store.users {
		users = append(users, acc.User)
	}
	s.store.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	respond(c, http.StatusOK, users)
}

func (s *Server) getUser(c *gin.Context) {
	user, ok := s.store.UserByID(c.Param("id"))
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	respond(c, http.StatusOK, user)
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid user payload"))
		return
	}

	s.store.mu.Lock()
	acc, ok := s.store.users[c.Param("id")]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if req.Name != "" {
		acc.Name = req.Name
	}
	if req.Role != "" {
		acc.Role = req.Role
	}
	if req.Status != "" {
		acc.Status = req.Status
	}
	user := acc.User
	s.store.mu.Unlock()

	respond(c, http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	s.store.mu.Lock()
	if _, ok := s.store.users[c.Param("id")]; !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	delete(s.store.users, c.Param("id"))
	s.store.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"message": "User deleted"})
}

func (s *Server) searchMessageUsers(c *gin.Context) {
	viewerID := middleware.CurrentUserID(c)
	search := c.Query("search")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	s.store.mu.Lock()
	users := make([]models.User, 0)
	for _, acc := range s.store.users {
		if acc.ID == viewerID || acc.Status == models.UserStatusBlocked {
			continue
		}
		if search != "" && !containsFold(acc.Name, search) && !containsFold(acc.Email, search) {
			continue
		}
		users = append(users, acc.User)
	}
	s.store.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	if len(users) > limit {
		users = users[:limit]
	}
	respond(c, http.StatusOK, users)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
