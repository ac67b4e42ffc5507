package stores

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
)

// notificationFake serves the notification endpoints with mutable in-memory
// state so read flags round-trip.
type notificationFake struct {
	t *testing.T

	listCalls atomic.Int64
	failList  atomic.Bool

	mu    sync.Mutex
	items []models.Notification
}

func newNotificationFake(t *testing.T, items []models.Notification) *notificationFake {
	return &notificationFake{t: t, items: items}
}

func (f *notificationFake) unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (f *notificationFake) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)
		if f.failList.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		f.mu.Lock()
		snapshot := append([]models.Notification(nil), f.items...)
		f.mu.Unlock()
		writeEnvelope(w, snapshot)
	})
	mux.HandleFunc("GET /notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]int{"count": f.unread()})
	})
	mux.HandleFunc("PATCH /notifications/read-all", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		for i := range f.items {
			f.items[i].IsRead = true
		}
		f.mu.Unlock()
		writeEnvelope(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("PATCH /notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		for i := range f.items {
			if f.items[i].ID == id {
				f.items[i].IsRead = true
			}
		}
		f.mu.Unlock()
		writeEnvelope(w, map[string]string{"message": "ok"})
	})

	return mux
}

func writeEnvelope(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": payload})
}

func newTestNotificationStore(t *testing.T, fake *notificationFake) *NotificationStore {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	sessions := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	require.NoError(t, sessions.Save(&models.Session{
		Token: "tok",
		User:  models.User{ID: "me", Name: "Me", Role: models.RoleStudent},
	}))

	client := api.NewClient(srv.URL, time.Second, sessions.Token)
	return NewNotificationStore(client, 20)
}

func sampleNotifications() []models.Notification {
	now := time.Now()
	return []models.Notification{
		{ID: "n1", Content: "Your club request was accepted.", CreatedAt: now},
		{ID: "n2", Content: "Welcome to the platform.", IsRead: true, CreatedAt: now.Add(-time.Hour)},
		{ID: "n3", Content: "Chess Club was approved.", CreatedAt: now.Add(-2 * time.Hour)},
	}
}

func TestStartLoadsUnreadCount(t *testing.T) {
	fake := newNotificationFake(t, sampleNotifications())
	store := newTestNotificationStore(t, fake)

	store.Start(context.Background())

	state := store.State()
	assert.Equal(t, 2, state.UnreadCount)
	assert.Empty(t, state.Notifications, "the list must stay unloaded until the dropdown opens")
}

func TestEnsureLoadedFetchesOnceOnly(t *testing.T) {
	fake := newNotificationFake(t, sampleNotifications())
	store := newTestNotificationStore(t, fake)

	store.EnsureLoaded(context.Background())
	store.EnsureLoaded(context.Background())

	state := store.State()
	require.Len(t, state.Notifications, 3)
	assert.Equal(t, "n1", state.Notifications[0].ID)
	assert.EqualValues(t, 1, fake.listCalls.Load())
}

func TestMarkAllReadFlipsLocalStateAndCount(t *testing.T) {
	fake := newNotificationFake(t, sampleNotifications())
	store := newTestNotificationStore(t, fake)

	store.Start(context.Background())
	store.EnsureLoaded(context.Background())
	store.MarkAllRead(context.Background())

	state := store.State()
	assert.Equal(t, 0, state.UnreadCount)
	for _, n := range state.Notifications {
		assert.True(t, n.IsRead, "notification %s should be read", n.ID)
	}
	assert.Zero(t, fake.unread())
}

func TestMarkReadPatchesOneItemAndRecounts(t *testing.T) {
	fake := newNotificationFake(t, sampleNotifications())
	store := newTestNotificationStore(t, fake)

	store.Start(context.Background())
	store.EnsureLoaded(context.Background())

	require.NoError(t, store.MarkRead(context.Background(), "n1"))

	state := store.State()
	assert.Equal(t, 1, state.UnreadCount)
	for _, n := range state.Notifications {
		if n.ID == "n1" || n.ID == "n2" {
			assert.True(t, n.IsRead)
		} else {
			assert.False(t, n.IsRead, "notification %s must stay unread", n.ID)
		}
	}
}

func TestListFailureSurfacesGenericError(t *testing.T) {
	fake := newNotificationFake(t, sampleNotifications())
	fake.failList.Store(true)
	store := newTestNotificationStore(t, fake)

	store.EnsureLoaded(context.Background())

	state := store.State()
	assert.Equal(t, "Could not load notifications.", state.Err)
	assert.Empty(t, state.Notifications)
	assert.False(t, state.Loading)
}

func TestFailedLoadRetriesOnNextEnsure(t *testing.T) {
	fake := newNotificationFake(t, sampleNotifications())
	fake.failList.Store(true)
	store := newTestNotificationStore(t, fake)

	store.EnsureLoaded(context.Background())
	fake.failList.Store(false)
	store.EnsureLoaded(context.Background())

	state := store.State()
	assert.Empty(t, state.Err)
	assert.Len(t, state.Notifications, 3)
}
