package stubserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

type createRequestPayload struct {
	StudentID string `json:"studentId" binding:"required"`
	ClubID    string `json:"clubId" binding:"required"`
	Message   string `json:"message"`
}

type updateRequestStatusPayload struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// requestFilter mirrors the query parameters of the request listings
func requestFilter(c *gin.Context) (clubID, studentID string, status models.RequestStatus) {
	return c.Query("clubId"), c.Query("studentId"), models.RequestStatus(c.Query("status"))
}

func matchesFilter(r *models.MembershipRequest, clubID, studentID string, status models.RequestStatus) bool {
	if clubID != "" && r.ClubID != clubID {
		return false
	}
	if studentID != "" && r.StudentID != studentID {
		return false
	}
	if status != "" && r.Status != status {
		return false
	}
	return true
}

func (s *Server) listRequests(c *gin.Context) {
	clubID, studentID, status := requestFilter(c)

	s.store.mu.Lock()
	requests := make([]models.MembershipRequest, 0)
	for _, r := range s.store.requests {
		if matchesFilter(r, clubID, studentID, status) {
			requests = append(requests, *r)
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, requests)
}

// myClubRequests scopes the listing to the clubs the caller manages
func (s *Server) myClubRequests(c *gin.Context) {
	clubID, studentID, status := requestFilter(c)
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	owned := s.store.clubsManagedBy(callerID)
	requests := make([]models.MembershipRequest, 0)
	for _, r := range s.store.requests {
		if !owned[r.ClubID] {
			continue
		}
		if matchesFilter(r, clubID, studentID, status) {
			requests = append(requests, *r)
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, requests)
}

// createRequest submits a membership request. At most one pending request per
// student and club pair may exist; existing members cannot apply again.
func (s *Server) createRequest(c *gin.Context) {
	var payload createRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid request payload"))
		return
	}
	if payload.StudentID != middleware.CurrentUserID(c) {
		middleware.HandleAPIError(c, apperrors.ErrPermissionDenied)
		return
	}

	s.store.mu.Lock()
	club, ok := s.store.clubs[payload.ClubID]
	if !ok || club.Status != models.ClubStatusApproved {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if club.HasMember(payload.StudentID) {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.NewConflictError("Already a member of this club"))
		return
	}
	for _, r := range s.store.requests {
		if r.ClubID == payload.ClubID && r.StudentID == payload.StudentID && r.Status == models.RequestStatusPending {
			s.store.mu.Unlock()
			middleware.HandleAPIError(c, apperrors.NewConflictError("A pending request already exists"))
			return
		}
	}

	request := &models.MembershipRequest{
		ID:        newID(),
		StudentID: payload.StudentID,
		ClubID:    payload.ClubID,
		Message:   payload.Message,
		Status:    models.RequestStatusPending,
		CreatedAt: s.store.now(),
	}
	s.store.requests = append(s.store.requests, request)

	var studentName string
	if acc, ok := s.store.users[payload.StudentID]; ok {
		studentName = acc.Name
	}
	s.store.notify(club.ManagerID, fmt.Sprintf("%s asked to join %q.", studentName, club.Name))
	out := *request
	s.store.mu.Unlock()

	respond(c, http.StatusCreated, out)
}

// updateRequestStatus accepts or rejects a pending request. Accepting also
// adds the student to the club's member list.
func (s *Server) updateRequestStatus(c *gin.Context) {
	var payload updateRequestStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid status payload"))
		return
	}
	if payload.Status != models.RequestStatusAccepted && payload.Status != models.RequestStatusRejected {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Status must be accepted or rejected"))
		return
	}

	callerID := middleware.CurrentUserID(c)
	callerRole := middleware.CurrentRole(c)

	s.store.mu.Lock()
	var request *models.MembershipRequest
	for _, r := range s.store.requests {
		if r.ID == c.Param("id") {
			request = r
			break
		}
	}
	if request == nil {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	club, ok := s.store.clubs[request.ClubID]
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
	if request.Terminal() {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.NewConflictError("Request was already decided"))
		return
	}

	request.Status = payload.Status
	if payload.Status == models.RequestStatusAccepted {
		if !club.HasMember(request.StudentID) {
			club.Members = append(club.Members, models.ClubMember{
				UserID:   request.StudentID,
				JoinedAt: s.store.now(),
			})
		}
		s.store.notify(request.StudentID, fmt.Sprintf("Your request to join %q was accepted.", club.Name))
	} else {
		s.store.notify(request.StudentID, fmt.Sprintf("Your request to join %q was rejected.", club.Name))
	}
	out := *request
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

// requestStats counts requests targeting the caller's clubs
func (s *Server) requestStats(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	owned := s.store.clubsManagedBy(callerID)
	var stats models.RequestStats
	for _, r := range s.store.requests {
		if !owned[r.ClubID] {
			continue
		}
		stats.Total++
		switch r.Status {
		case models.RequestStatusPending:
			stats.Pending++
		case models.RequestStatusAccepted:
			stats.Accepted++
		case models.RequestStatusRejected:
			stats.Rejected++
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, stats)
}
