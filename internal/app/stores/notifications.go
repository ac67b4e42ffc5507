package stores

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

// notificationLoadError is the generic banner text for list failures; the
// unread-count poll degrades silently instead.
const notificationLoadError = "Could not load notifications."

// NotificationState is a point-in-time copy of the store for rendering
type NotificationState struct {
	UnreadCount   int
	Notifications []models.Notification
	Loading       bool
	Err           string
}

// NotificationStore is the cross-cutting notification state mounted once at
// the application root. The unread count loads on Start; the full list loads
// lazily the first time the bell dropdown opens.
type NotificationStore struct {
	api      *api.Client
	pageSize int

	mu            sync.Mutex
	unreadCount   int
	notifications []models.Notification
	loading       bool
	err           string
	listLoaded    bool

	logger zerolog.Logger
}

// NewNotificationStore creates the store; pageSize is the fixed size of the
// single page the dropdown shows.
func NewNotificationStore(client *api.Client, pageSize int) *NotificationStore {
	return &NotificationStore{
		api:      client,
		pageSize: pageSize,
		logger:   logger.With("notifications"),
	}
}

// Start performs the mount-time unread count load
func (s *NotificationStore) Start(ctx context.Context) {
	s.LoadUnreadCount(ctx)
}

// State returns a copy of the current store state
func (s *NotificationStore) State() NotificationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.Notification, len(s.notifications))
	copy(items, s.notifications)

	return NotificationState{
		UnreadCount:   s.unreadCount,
		Notifications: items,
		Loading:       s.loading,
		Err:           s.err,
	}
}

// LoadUnreadCount fetches the unread counter and replaces the state. A
// failure is logged, not surfaced: the badge simply stays stale.
func (s *NotificationStore) LoadUnreadCount(ctx context.Context) {
	count, err := s.api.UnreadCount(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load unread count")
		return
	}

	s.mu.Lock()
	s.unreadCount = count
	s.mu.Unlock()
}

// LoadNotifications fetches the first page and replaces the list
func (s *NotificationStore) LoadNotifications(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	items, err := s.api.ListNotifications(ctx, 1, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load notifications")
		s.err = notificationLoadError
		return
	}
	s.notifications = items
	s.listLoaded = true
}

// EnsureLoaded loads the list the first time the dropdown opens
func (s *NotificationStore) EnsureLoaded(ctx context.Context) {
	s.mu.Lock()
	loaded := s.listLoaded
	s.mu.Unlock()

	if !loaded {
		s.LoadNotifications(ctx)
	}
}

// MarkAllRead flips every notification read: backend first, then the local
// count and every loaded item.
func (s *NotificationStore) MarkAllRead(ctx context.Context) {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to mark all notifications read")
		s.mu.Lock()
		s.err = "Could not mark all notifications as read."
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.unreadCount = 0
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.mu.Unlock()
}

// MarkRead marks a single notification read on the backend, patches the one
// matching loaded item, then re-triggers the unread-count reload.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			break
		}
	}
	s.mu.Unlock()

	s.LoadUnreadCount(ctx)
	return nil
}
