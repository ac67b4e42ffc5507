package stubserver

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/middleware"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
	"github.com/tranminh/clubhub/internal/pkg/helpers"
)

type createThreadRequest struct {
	Type         models.ThreadType       `json:"type" binding:"required"`
	Participants []models.ParticipantRef `json:"participants" binding:"required"`
	Label        string                  `json:"label"`
	Content      string                  `json:"content"`
}

type sendMessageRequest struct {
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments"`
}

// listThreads returns one page of the caller's threads, pinned first and then
// by most recent activity.
func (s *Server) listThreads(c *gin.Context) {
	callerID := middleware.CurrentUserID(c)
	page, size := helpers.ParsePaginationParams(c)

	s.store.mu.Lock()
	stored := make([]*storedThread, 0)
	for _, t := range s.store.threads {
		if s.store.visibleTo(t, callerID) {
			stored = append(stored, t)
		}
	}
	sort.Slice(stored, func(i, j int) bool {
		pi, pj := stored[i].pinnedBy[callerID], stored[j].pinnedBy[callerID]
		if pi != pj {
			return pi
		}
		return stored[i].lastActivity().After(stored[j].lastActivity())
	})
	threads := make([]models.Thread, 0, len(stored))
	for _, t := range stored {
		threads = append(threads, s.store.renderThread(t, callerID))
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, helpers.PageOf(threads, page, size))
}

// createThread opens a conversation. Direct threads are deduplicated on their
// user set: opening a conversation with the same people returns the existing
// thread.
func (s *Server) createThread(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid thread payload"))
		return
	}

	callerID := middleware.CurrentUserID(c)

	s.store.mu.Lock()
	participants, err := s.store.resolveParticipants(req.Type, req.Participants)
	if err != nil {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, err)
		return
	}

	var thread *storedThread
	if req.Type == models.ThreadDirect {
		thread = s.store.findDirectThread(participants)
	}
	if thread == nil {
		thread = &storedThread{
			Key:          newID(),
			Type:         req.Type,
			Participants: participants,
			CreatedAt:    s.store.now(),
			pinnedBy:     make(map[string]bool),
		}
		s.store.threads[thread.Key] = thread
	}

	if strings.TrimSpace(req.Content) != "" {
		thread.messages = append(thread.messages, &storedMessage{
			ID:        newID(),
			ThreadKey: thread.Key,
			SenderID:  callerID,
			Content:   req.Content,
			CreatedAt: s.store.now(),
			readBy:    make(map[string]bool),
		})
	}

	out := s.store.renderThread(thread, callerID)
	s.store.mu.Unlock()

	respond(c, http.StatusCreated, out)
}

// resolveParticipants turns write-side references into read-side entries and
// enforces the participant shape of each thread type.
func (s *Store) resolveParticipants(threadType models.ThreadType, refs []models.ParticipantRef) ([]models.Participant, error) {
	if len(refs) == 0 {
		return nil, apperrors.NewBadRequestError("A thread needs at least one participant")
	}

	participants := make([]models.Participant, 0, len(refs))
	userCount, clubCount, eventCount := 0, 0, 0
	for _, ref := range refs {
		kind, err := ref.Kind()
		if err != nil {
			return nil, apperrors.NewBadRequestError("Each participant must reference exactly one entity")
		}
		switch kind {
		case models.ParticipantUser:
			acc, ok := s.users[ref.UserID]
			if !ok {
				return nil, apperrors.NewResourceNotFoundError("Participant user not found")
			}
			u := acc.User
			participants = append(participants, models.Participant{User: &u})
			userCount++
		case models.ParticipantClub:
			club, ok := s.clubs[ref.ClubID]
			if !ok {
				return nil, apperrors.NewResourceNotFoundError("Participant club not found")
			}
			participants = append(participants, models.Participant{
				Club: &models.ParticipantClubInfo{ID: club.ID, Name: club.Name},
			})
			clubCount++
		case models.ParticipantEvent:
			event, ok := s.events[ref.EventID]
			if !ok {
				return nil, apperrors.NewResourceNotFoundError("Participant event not found")
			}
			participants = append(participants, models.Participant{
				Event: &models.ParticipantEventInfo{ID: event.ID, Title: event.Title},
			})
			eventCount++
		}
	}

	switch threadType {
	case models.ThreadDirect:
		if clubCount > 0 || eventCount > 0 || userCount < 2 {
			return nil, apperrors.NewBadRequestError("Direct threads take two or more users")
		}
	case models.ThreadUserClub:
		if clubCount != 1 || eventCount > 0 || userCount < 1 {
			return nil, apperrors.NewBadRequestError("Member threads take users and exactly one club")
		}
	case models.ThreadClubBroadcast:
		if clubCount != 1 || userCount > 0 || eventCount > 0 {
			return nil, apperrors.NewBadRequestError("Broadcast threads take exactly one club")
		}
	case models.ThreadEvent:
		if eventCount != 1 || userCount > 0 || clubCount > 0 {
			return nil, apperrors.NewBadRequestError("Event threads take exactly one event")
		}
	default:
		return nil, apperrors.NewBadRequestError("Unknown thread type")
	}

	return participants, nil
}

// findDirectThread returns an existing direct thread over the same user set
func (s *Store) findDirectThread(participants []models.Participant) *storedThread {
	want := userIDSet(participants)
	for _, t := range s.threads {
		if t.Type != models.ThreadDirect {
			continue
		}
		have := userIDSet(t.Participants)
		if len(have) != len(want) {
			continue
		}
		match := true
		for id := range want {
			if !have[id] {
				match = false
				break
			}
		}
		if match {
			return t
		}
	}
	return nil
}

func userIDSet(participants []models.Participant) map[string]bool {
	set := make(map[string]bool)
	for _, p := range participants {
		if p.User != nil {
			set[p.User.ID] = true
		}
	}
	return set
}

func (s *Server) threadForCaller(c *gin.Context) (*storedThread, string, bool) {
	callerID := middleware.CurrentUserID(c)
	thread, ok := s.store.threads[c.Param("key")]
	if !ok || !s.store.visibleTo(thread, callerID) {
		return nil, callerID, false
	}
	return thread, callerID, true
}

func (s *Server) pinThread(c *gin.Context) {
	s.setPinned(c, true)
}

func (s *Server) unpinThread(c *gin.Context) {
	s.setPinned(c, false)
}

func (s *Server) setPinned(c *gin.Context, pinned bool) {
	s.store.mu.Lock()
	thread, callerID, ok := s.threadForCaller(c)
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	if pinned {
		thread.pinnedBy[callerID] = true
	} else {
		delete(thread.pinnedBy, callerID)
	}
	out := s.store.renderThread(thread, callerID)
	s.store.mu.Unlock()

	respond(c, http.StatusOK, out)
}

// markThreadRead marks every message in the thread read for the caller
func (s *Server) markThreadRead(c *gin.Context) {
	s.store.mu.Lock()
	thread, callerID, ok := s.threadForCaller(c)
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	for _, m := range thread.messages {
		if m.SenderID != callerID {
			m.readBy[callerID] = true
		}
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, gin.H{"message": "Thread marked read"})
}

// listThreadMessages returns one page of a thread's messages, newest first
func (s *Server) listThreadMessages(c *gin.Context) {
	page, size := helpers.ParsePaginationParams(c)

	s.store.mu.Lock()
	thread, callerID, ok := s.threadForCaller(c)
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	newest := make([]models.Message, 0, len(thread.messages))
	for i := len(thread.messages) - 1; i >= 0; i-- {
		newest = append(newest, s.store.renderMessage(thread.messages[i], callerID))
	}
	s.store.mu.Unlock()

	respond(c, http.StatusOK, helpers.PageOf(newest, page, size))
}

// sendThreadMessage appends a message to the thread. A message needs content
// or at least one attachment.
func (s *Server) sendThreadMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("Invalid message payload"))
		return
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Attachments) == 0 {
		middleware.HandleAPIError(c, apperrors.NewBadRequestError("A message needs content or an attachment"))
		return
	}

	s.store.mu.Lock()
	thread, callerID, ok := s.threadForCaller(c)
	if !ok {
		s.store.mu.Unlock()
		middleware.HandleAPIError(c, apperrors.ErrResourceNotFound)
		return
	}
	message := &storedMessage{
		ID:          newID(),
		ThreadKey:   thread.Key,
		SenderID:    callerID,
		Content:     req.Content,
		Attachments: req.Attachments,
		CreatedAt:   s.store.now(),
		readBy:      make(map[string]bool),
	}
	thread.messages = append(thread.messages, message)
	out := s.store.renderMessage(message, callerID)
	s.store.mu.Unlock()

	respond(c, http.StatusCreated, out)
}
