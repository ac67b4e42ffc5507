package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
	"github.com/tranminh/clubhub/internal/pkg/helpers"
)

// listNotifications returns one page of the caller's notifications, most
// recent first.
func (s *Server) listNotifications(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	page, size := helpers.ParsePaginationParams(c)

	s.store.mu.Lock()
	mine := make([]models.Notification, 0)
	for i := len(s.store.notifications) - 1; i >= 0; i-- {
		n := s.store.notifications[i]
		if n.UserID == callerID {
			mine = append(mine, n.Notification)
		}
	}
	s.store.mu.Unlock()

	start, end := helpers.CalculateSliceIndices(page, size, len(mine))
	respond(c, http.StatusOK, mine[start:end])
}

func (s *Server) unreadCount(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	count := 0
	for _, n := range s.store.notifications {
		if n.UserID == callerID && !n.IsRead {
			count++
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"count": count})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	for _, n := range s.store.notifications {
		if n.ID == c.Param("id") && n.UserID == callerID {
			n.IsRead = true
			out := n.Notification
			s.store.mu.Unlock()
			respond(c, http.StatusOK, out)
			return
		}
	}
	s.store.mu.Unlock()

	middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	for _, n := range s.store.notifications {
		if n.UserID == callerID {
			n.IsRead = true
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"message": "All notifications marked read"})
}
