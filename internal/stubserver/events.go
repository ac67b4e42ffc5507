package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

type joinEventRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (s *Server) listEvents(c *gin.Context) {
	s.store.mu.Lock()
	events := make([]models.Event, 0, len(s.store.events))
	for _, e := range s.store.sortedEvents() {
		events = append(events, *e)
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, events)
}

func (s *Server) getEvent(c *gin.Context) {
	s.store.mu.Lock()
	event, ok := s.store.events[c.Param("id")]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	out := *event
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

// joinEvent adds the caller to the participant list. A repeated join is a
// no-op, and admins cannot participate.
func (s *Server) joinEvent(c *gin.Context) {
	var req joinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid join payload"))
		return
	}
	if req.UserID != middleware.CurrentUserID(c) {
		middleware.HandleAPIError(c, apperrors.ErrPermissionDenied)
		return
	}
	if middleware.CurrentRole(c) == models.RoleAdmin {
		middleware.HandleAPIError(c, apperrors.NewForbiddenError("Admins cannot join events"))
		return
	}

	s.store.mu.Lock()
	event, ok := s.store.events[c.Param("id")]
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if !event.HasParticipant(req.UserID) {
		event.Participants = append(event.Participants, models.EventParticipant{UserID: req.UserID})
	}
	out := *event
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}
