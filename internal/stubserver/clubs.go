package stubserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

type createClubRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

type updateClubRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

type addMemberRequest struct {
	ClubID string `json:"clubId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// listClubs returns every club for admins and approved clubs for everyone
// else, anonymous browsers included.
func (s *Server) listClubs(c *gin.Context) {
	viewer := s.identify(c)

	s.store.mu.Lock()
	clubs := make([]models.Club, 0)
	for _, club := range s.store.sortedClubs() {
		if club.Status != models.ClubStatusApproved {
			if viewer == nil || viewer.Role != models.RoleAdmin {
				continue
			}
		}
		clubs = append(clubs, *club)
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, clubs)
}

func (s *Server) getClub(c *gin.Context) {
	s.store.mu.Lock()
	club, ok := s.store.clubs[c.Param("id")]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	out := *club
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

func (s *Server) createClub(c *gin.Context) {
	var req createClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid club payload"))
		return
	}

	club := models.Club{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		Status:      models.ClubStatusPending,
		ManagerID:   middleware.CurrentUserID(c),
		Members:     []models.ClubMember{},
	}
	club.ID = s.store.AddClub(club)

	s.logger.Info().Str("club", club.Name).Msg("Club created, awaiting approval")
	respond(c, http.StatusCreated, club)
}

func (s *Server) updateClub(c *gin.Context) {
	var req updateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid club payload"))
		return
	}

	callerID := middleware.CurrentUserID(c)
	callerRole := middleware.CurrentRole(c)

	s.store.mu.Lock()
	club, ok := s.store.clubs[c.Param("id")]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if club.ManagerID != callerID && callerRole != models.RoleAdmin {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrPermissionDenied)
		return
	}
	if req.Name != "" {
		club.Name = req.Name
	}
	if req.Category != "" {
		club.Category = req.Category
	}
	if req.Description != "" {
		club.Description = req.Description
	}
	if req.LogoURL != "" {
		club.LogoURL = req.LogoURL
	}
	out := *club
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

func (s *Server) approveClub(c *gin.Context) {
	s.setClubStatus(c, models.ClubStatusApproved, "Your club %q was approved.")
}

func (s *Server) rejectClub(c *gin.Context) {
	s.setClubStatus(c, models.ClubStatusRejected, "Your club %q was rejected.")
}

func (s *Server) setClubStatus(c *gin.Context, status models.ClubStatus, noticeFormat string) {
	s.store.mu.Lock()
	club, ok := s.store.clubs[c.Param("id")]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	club.Status = status
	s.store.notify(club.ManagerID, fmt.Sprintf(noticeFormat, club.Name))
	out := *club
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

func (s *Server) deleteClub(c *gin.Context) {
	s.store.mu.Lock()
	if _, ok := s.store.clubs[c.Param("id")]; !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	delete(s.store.clubs, c.Param("id"))
	s.store.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"message": "Club deleted"})
}

func (s *Server) addMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid member payload"))
		return
	}

	callerID := middleware.CurrentUserID(c)
	callerRole := middleware.CurrentRole(c)

	s.store.mu.Lock()
	club, ok := s.store.clubs[req.ClubID]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if club.ManagerID != callerID && callerRole != models.RoleAdmin {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrPermissionDenied)
		return
	}
	if !club.HasMember(req.UserID) {
		club.Members = append(club.Members, models.ClubMember{
			UserID:   req.UserID,
			JoinedAt: s.store.now(),
		})
	}
	out := *club
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

func (s *Server) myManagedClubs(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	clubs := make([]models.Club, 0)
	for _, club := range s.store.sortedClubs() {
		if club.ManagerID == callerID {
			clubs = append(clubs, *club)
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, clubs)
}

func (s *Server) myClubs(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	clubs := make([]models.Club, 0)
	for _, club := range s.store.sortedClubs() {
		if club.HasMember(callerID) {
			clubs = append(clubs, *club)
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, clubs)
}
