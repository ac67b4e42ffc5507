// Package stubserver is an in-memory reference backend speaking the same REST
// surface the client consumes. It exists for local development and for
// integration tests; nothing in it persists across restarts.
package stubserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tranminh/clubhub/internal/app/models"
)

// account is a stored user with credentials
type account struct {
	models.User
	PasswordHash string
}

// storedMessage keeps per-viewer read tracking out of the wire model
type storedMessage struct {
	ID          string
	ThreadKey   string
	SenderID    string
	Content     string
	Attachments []models.Attachment
	CreatedAt   time.Time
	readBy      map[string]bool
}

// storedThread keeps per-viewer pin flags out of the wire model
type storedThread struct {
	Key          string
	Type         models.ThreadType
	Participants []models.Participant
	CreatedAt    time.Time
	pinnedBy     map[string]bool
	messages     []*storedMessage
}

// storedNotification targets one user
type storedNotification struct {
	models.Notification
	UserID string
}

// Store is the whole backend state behind one mutex. Handlers take the lock
// for the duration of a request; there are no partial reads.
type Store struct {
	mu sync.Mutex

	users         map[string]*account
	clubs         map[string]*models.Club
	events        map[string]*models.Event
	requests      []*models.MembershipRequest
	notifications []*storedNotification
	threads       map[string]*storedThread

	now func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*account),
		clubs:   make(map[string]*models.Club),
		events:  make(map[string]*models.Event),
		threads: make(map[string]*storedThread),
		now:     time.Now,
	}
}

func newID() string { return uuid.New().String() }

// UserByID implements middleware.UserSource
func (s *Store) UserByID(id string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[id]
	if !ok {
		return nil, false
	}
	u := acc.User
	return &u, true
}

func (s *Store) userByEmail(email string) (*account, bool) {
	for _, acc := range s.users {
		if strings.EqualFold(acc.Email, email) {
			return acc, true
		}
	}
	return nil, false
}

// AddUser inserts an account directly, for seeding and tests
func (s *Store) AddUser(user models.User, passwordHash string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = newID()
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	s.users[user.ID] = &account{User: user, PasswordHash: passwordHash}
	return user.ID
}

// AddClub inserts a club directly, for seeding and tests
func (s *Store) AddClub(club models.Club) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if club.ID == "" {
		club.ID = newID()
	}
	if club.Status == "" {
		club.Status = models.ClubStatusPending
	}
	if club.Members == nil {
		club.Members = []models.ClubMember{}
	}
	s.clubs[club.ID] = &club
	return club.ID
}

// AddEvent inserts an event directly, for seeding and tests
func (s *Store) AddEvent(event models.Event) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = newID()
	}
	if event.Participants == nil {
		event.Participants = []models.EventParticipant{}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.events[event.ID] = &event
	return event.ID
}

// Notify queues a notification for one user
func (s *Store) Notify(userID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(userID, content)
}

func (s *Store) notify(userID, content string) {
	s.notifications = append(s.notifications, &storedNotification{
		Notification: models.Notification{
			ID:        newID(),
			Content:   content,
			CreatedAt: s.now(),
		},
		UserID: userID,
	})
}

// clubsManagedBy returns the ids of the clubs the user manages
func (s *Store) clubsManagedBy(userID string) map[string]bool {
	owned := make(map[string]bool)
	for id, club := range s.clubs {
		if club.ManagerID == userID {
			owned[id] = true
		}
	}
	return owned
}

// sortedClubs returns clubs in a stable name order
func (s *Store) sortedClubs() []*models.Club {
	clubs := make([]*models.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs
}

// sortedEvents returns events in date order
func (s *Store) sortedEvents() []*models.Event {
	events := make([]*models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

// visibleTo reports whether userID may see the thread. Direct and member
// conversations list their user participants explicitly; club and event
// scoped conversations derive visibility from the referenced aggregate.
func (s *Store) visibleTo(t *storedThread, userID string) bool {
	for _, p := range t.Participants {
		if p.IsUser(userID) {
			return true
		}
	}
	for _, p := range t.Participants {
		if p.Club != nil {
			if club, ok := s.clubs[p.Club.ID]; ok {
				if club.ManagerID == userID || club.HasMember(userID) {
					return true
				}
			}
		}
		if p.Event != nil {
			if event, ok := s.events[p.Event.ID]; ok && event.HasParticipant(userID) {
				return true
			}
		}
	}
	return false
}

// renderMessage projects a stored message for one viewer
func (s *Store) renderMessage(m *storedMessage, viewerID string) models.Message {
	var sender models.User
	if acc, ok := s.users[m.SenderID]; ok {
		sender = acc.User
	}
	return models.Message{
		ID:          m.ID,
		ThreadKey:   m.ThreadKey,
		Sender:      sender,
		Content:     m.Content,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
		IsRead:      m.SenderID == viewerID || m.readBy[viewerID],
	}
}

// renderThread projects a stored thread for one viewer
func (s *Store) renderThread(t *storedThread, viewerID string) models.Thread {
	unread := 0
	for _, m := range t.messages {
		if m.SenderID != viewerID && !m.readBy[viewerID] {
			unread++
		}
	}

	var last *models.Message
	if n := len(t.messages); n > 0 {
		rendered := s.renderMessage(t.messages[n-1], viewerID)
		last = &rendered
	}

	return models.Thread{
		ThreadKey:    t.Key,
		Type:         t.Type,
		Participants: t.Participants,
		LastMessage:  last,
		UnreadCount:  unread,
		MessageCount: len(t.messages),
		Meta:         models.ThreadMeta{IsPinned: t.pinnedBy[viewerID]},
	}
}

// lastActivity orders threads in listings
func (t *storedThread) lastActivity() time.Time {
	if n := len(t.messages); n > 0 {
		return t.messages[n-1].CreatedAt
	}
	return t.CreatedAt
}
