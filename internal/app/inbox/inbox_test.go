package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

// backendFake serves the messaging endpoints with canned data and counts
// every request it sees.
type backendFake struct {
	t        *testing.T
	requests atomic.Int64
	sends    atomic.Int64
	reads    atomic.Int64
	failRead atomic.Bool

	// messagesByThread holds newest-first pages keyed by thread key
	messagesByThread map[string][]models.Message
	threads          []models.Thread
}

func (f *backendFake) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /messages/threads", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		writeData(w, models.Page[models.Thread]{
			Items: f.threads,
			Pagination: models.PaginationInfo{
				CurrentPage: 1, TotalPages: 1, PageSize: 20, TotalItems: int64(len(f.threads)),
			},
		})
	})
	mux.HandleFunc("GET /messages/threads/{key}/messages", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		items := f.messagesByThread[r.PathValue("key")]
		writeData(w, models.Page[models.Message]{
			Items: items,
			Pagination: models.PaginationInfo{
				CurrentPage: 1, TotalPages: 1, PageSize: 20, TotalItems: int64(len(items)),
			},
		})
	})
	mux.HandleFunc("POST /messages/threads/{key}/messages", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.sends.Add(1)
		var req api.SendMessageRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		writeData(w, models.Message{ID: "new", ThreadKey: r.PathValue("key"), Content: req.Content})
	})
	mux.HandleFunc("PUT /messages/threads/{key}/read", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		defer f.reads.Add(1)
		if f.failRead.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		writeData(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("PUT /messages/threads/{key}/pin", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		for i := range f.threads {
			if f.threads[i].ThreadKey == r.PathValue("key") {
				f.threads[i].Meta.IsPinned = true
			}
		}
		writeData(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("PUT /messages/threads/{key}/unpin", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		for i := range f.threads {
			if f.threads[i].ThreadKey == r.PathValue("key") {
				f.threads[i].Meta.IsPinned = false
			}
		}
		writeData(w, map[string]string{"message": "ok"})
	})

	return mux
}

func writeData(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": payload})
}

func directThread(key string) models.Thread {
	return models.Thread{
		ThreadKey: key,
		Type:      models.ThreadDirect,
		Participants: []models.Participant{
			{User: &models.User{ID: "me", Name: "Me"}},
			{User: &models.User{ID: "other", Name: "Other"}},
		},
	}
}

func newTestInbox(t *testing.T, fake *backendFake) *Inbox {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	sessions := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	require.NoError(t, sessions.Save(&models.Session{
		Token: "tok",
		User:  models.User{ID: "me", Name: "Me", Role: models.RoleStudent},
	}))

	client := api.NewClient(srv.URL, time.Second, sessions.Token)
	in := New(client, sessions, Config{PollInterval: time.Hour})
	t.Cleanup(in.Close)
	return in
}

func TestSendWithoutSelectionNeverHitsNetwork(t *testing.T) {
	fake := &backendFake{t: t}
	in := newTestInbox(t, fake)

	in.SetDraft("hello")
	err := in.Send(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrNoThreadSelected))
	assert.EqualValues(t, 0, fake.requests.Load())
}

func TestEmptySendRejectedBeforeNetwork(t *testing.T) {
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{},
	}
	in := newTestInbox(t, fake)
	require.NoError(t, in.Select(context.Background(), directThread("k1")))

	in.SetDraft("   \n\t ")
	err := in.Send(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrEmptyMessage))
	assert.EqualValues(t, 0, fake.sends.Load(), "whitespace-only draft must not reach the backend")
}

func TestSendClearsComposerAndReloads(t *testing.T) {
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{},
	}
	in := newTestInbox(t, fake)
	require.NoError(t, in.Select(context.Background(), directThread("k1")))

	in.SetDraft("  hi there  ")
	require.NoError(t, in.Send(context.Background()))

	assert.EqualValues(t, 1, fake.sends.Load())
	assert.Equal(t, "", in.Draft())
	assert.Empty(t, in.Attachments())
}

func TestMessagesArriveNewestFirstAndRenderChronologically(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newestFirst := []models.Message{
		{ID: "m3", Content: "third", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m2", Content: "second", CreatedAt: base.Add(time.Minute)},
		{ID: "m1", Content: "first", CreatedAt: base},
	}
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{"k1": newestFirst},
	}
	in := newTestInbox(t, fake)
	require.NoError(t, in.Select(context.Background(), directThread("k1")))

	state := in.State()
	require.Len(t, state.Messages, 3)
	assert.Equal(t, "m1", state.Messages[0].ID)
	assert.Equal(t, "m2", state.Messages[1].ID)
	assert.Equal(t, "m3", state.Messages[2].ID)
}

func TestSelectingAnotherThreadReplacesBuffer(t *testing.T) {
	fake := &backendFake{
		t:       t,
		threads: []models.Thread{directThread("a"), directThread("b")},
		messagesByThread: map[string][]models.Message{
			"a": {{ID: "a1", ThreadKey: "a", Content: "from a"}},
			"b": {{ID: "b1", ThreadKey: "b", Content: "from b"}},
		},
	}
	in := newTestInbox(t, fake)

	require.NoError(t, in.Select(context.Background(), directThread("a")))
	require.NoError(t, in.Select(context.Background(), directThread("b")))

	state := in.State()
	require.NotNil(t, state.Selected)
	assert.Equal(t, "b", state.Selected.ThreadKey)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "b1", state.Messages[0].ID, "no message of the previous thread may remain")
}

func TestTogglePinRoundTripsThroughServer(t *testing.T) {
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{},
	}
	in := newTestInbox(t, fake)
	require.NoError(t, in.LoadThreads(context.Background(), 1))

	thread := in.State().Threads[0]
	require.False(t, thread.Meta.IsPinned)

	require.NoError(t, in.TogglePin(context.Background(), thread))
	assert.True(t, in.State().Threads[0].Meta.IsPinned)

	require.NoError(t, in.TogglePin(context.Background(), in.State().Threads[0]))
	assert.False(t, in.State().Threads[0].Meta.IsPinned)
}

func TestCreateDirectThreadWithOnlySelfFailsBeforeNetwork(t *testing.T) {
	fake := &backendFake{t: t}
	in := newTestInbox(t, fake)

	_, err := in.CreateThread(context.Background(), NewThreadForm{
		Type:         models.ThreadDirect,
		RecipientIDs: []string{"me", "me"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoRecipients))
	assert.EqualValues(t, 0, fake.requests.Load())
}

func TestBuildParticipantsPerType(t *testing.T) {
	t.Run("direct dedupes and leads with self", func(t *testing.T) {
		form := NewThreadForm{Type: models.ThreadDirect, RecipientIDs: []string{"u2", "me", "u2", "u3"}}
		refs, _, err := form.buildParticipants("me")
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, models.UserRef("me"), refs[0])
		assert.Equal(t, models.UserRef("u2"), refs[1])
		assert.Equal(t, models.UserRef("u3"), refs[2])
	})

	t.Run("user club expands members and appends club ref", func(t *testing.T) {
		form := NewThreadForm{
			Type:      models.ThreadUserClub,
			ClubID:    "c1",
			ClubName:  "Chess Club",
			MemberIDs: []string{"me", "u2"},
		}
		refs, label, err := form.buildParticipants("me")
		require.NoError(t, err)
		assert.Equal(t, "CLUB_Chess Club", label)
		require.Len(t, refs, 3)
		assert.Equal(t, models.ClubRef("c1"), refs[2])
	})

	t.Run("broadcast carries a single club ref", func(t *testing.T) {
		form := NewThreadForm{Type: models.ThreadClubBroadcast, ClubID: "c1"}
		refs, _, err := form.buildParticipants("me")
		require.NoError(t, err)
		assert.Equal(t, []models.ParticipantRef{models.ClubRef("c1")}, refs)
	})

	t.Run("event requires an event id", func(t *testing.T) {
		form := NewThreadForm{Type: models.ThreadEvent}
		_, _, err := form.buildParticipants("me")
		assert.True(t, errors.Is(err, apperrors.ErrEventRequired))
	})
}

func TestThreadTitle(t *testing.T) {
	club := models.Thread{
		Type: models.ThreadUserClub,
		Participants: []models.Participant{
			{User: &models.User{ID: "me", Name: "Me"}},
			{Club: &models.ParticipantClubInfo{ID: "c1", Name: "Chess Club"}},
		},
	}
	assert.Equal(t, "CLUB_Chess Club", ThreadTitle(club, "me"))

	direct := directThread("k")
	assert.Equal(t, "Other", ThreadTitle(direct, "me"))

	empty := models.Thread{Type: models.ThreadClubBroadcast}
	assert.Equal(t, "Club announcement", ThreadTitle(empty, "me"))
}

func TestLastMessagePreview(t *testing.T) {
	withText := models.Thread{LastMessage: &models.Message{Content: "see you at 5"}}
	assert.Equal(t, "see you at 5", LastMessagePreview(withText))

	oneFile := models.Thread{LastMessage: &models.Message{
		Attachments: []models.Attachment{{Name: "a.png"}},
	}}
	assert.Equal(t, "1 attachment", LastMessagePreview(oneFile))

	twoFiles := models.Thread{LastMessage: &models.Message{
		Attachments: []models.Attachment{{Name: "a"}, {Name: "b"}},
	}}
	assert.Equal(t, "2 attachments", LastMessagePreview(twoFiles))

	assert.Equal(t, "", LastMessagePreview(models.Thread{}))
}

func TestComposerAttachments(t *testing.T) {
	fake := &backendFake{t: t}
	in := newTestInbox(t, fake)

	staged := in.Attach("notes.txt", []byte("plain text payload"))
	assert.True(t, strings.HasPrefix(staged.Attachment.URL, "data:text/plain"), staged.Attachment.URL)
	assert.EqualValues(t, 18, staged.Attachment.Size)
	assert.False(t, in.CanSend(), "attachment alone cannot send without a selected thread")

	in.RemoveAttachment(staged.ID)
	assert.Empty(t, in.Attachments())
}

func TestCanSend(t *testing.T) {
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{},
	}
	in := newTestInbox(t, fake)

	in.SetDraft("hello")
	assert.False(t, in.CanSend(), "no thread selected")

	require.NoError(t, in.Select(context.Background(), directThread("k1")))
	assert.True(t, in.CanSend())

	in.SetDraft("   ")
	assert.False(t, in.CanSend())

	in.Attach("x.bin", []byte{0x1, 0x2})
	assert.True(t, in.CanSend(), "attachment without text is sendable")
}

func TestSendSurfacesBackendError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /messages/threads/{key}/read", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /messages/threads/{key}/messages", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, models.Page[models.Message]{Pagination: models.PaginationInfo{CurrentPage: 1, TotalPages: 1}})
	})
	mux.HandleFunc("POST /messages/threads/{key}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"You are not part of this conversation"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sessions := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	require.NoError(t, sessions.Save(&models.Session{Token: "tok", User: models.User{ID: "me", Role: models.RoleStudent}}))
	in := New(api.NewClient(srv.URL, time.Second, sessions.Token), sessions, Config{PollInterval: time.Hour})
	t.Cleanup(in.Close)

	require.NoError(t, in.Select(context.Background(), directThread("k1")))
	in.SetDraft("hi")
	err := in.Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, "You are not part of this conversation", in.State().Err)
}

func newInboxWith(t *testing.T, handler http.Handler, cfg Config) *Inbox {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewStore(filepath.Join(t.TempDir(), "userinfo.json"))
	require.NoError(t, sessions.Save(&models.Session{Token: "tok", User: models.User{ID: "me", Role: models.RoleStudent}}))

	in := New(api.NewClient(srv.URL, 5*time.Second, sessions.Token), sessions, cfg)
	t.Cleanup(in.Close)
	return in
}

// pagedConversation serves thread "a" as two message pages and thread "b" as
// one; page 2 of "a" can be held open until released.
type pagedConversation struct {
	requests atomic.Int64
	hold     atomic.Bool
	entered  chan struct{}
	release  chan struct{}
}

func newPagedConversation() *pagedConversation {
	return &pagedConversation{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (f *pagedConversation) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /messages/threads/{key}/read", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /messages/threads/{key}/messages", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		key := r.PathValue("key")
		page := r.URL.Query().Get("page")
		if key == "a" && page == "2" && f.hold.Load() {
			f.entered <- struct{}{}
			<-f.release
		}
		switch {
		case key == "a" && page == "2":
			writeData(w, models.Page[models.Message]{
				Items:      []models.Message{{ID: "a1", ThreadKey: "a", Content: "first"}},
				Pagination: models.PaginationInfo{CurrentPage: 2, TotalPages: 2, PageSize: 2, TotalItems: 3},
			})
		case key == "a":
			writeData(w, models.Page[models.Message]{
				Items: []models.Message{
					{ID: "a3", ThreadKey: "a", Content: "third"},
					{ID: "a2", ThreadKey: "a", Content: "second"},
				},
				Pagination: models.PaginationInfo{CurrentPage: 1, TotalPages: 2, PageSize: 2, TotalItems: 3},
			})
		default:
			writeData(w, models.Page[models.Message]{
				Items:      []models.Message{{ID: "b1", ThreadKey: "b", Content: "from b"}},
				Pagination: models.PaginationInfo{CurrentPage: 1, TotalPages: 1, PageSize: 2, TotalItems: 1},
			})
		}
	})
	return mux
}

func TestLoadOlderPrependsUntilFirstPage(t *testing.T) {
	fake := newPagedConversation()
	in := newInboxWith(t, fake.handler(), Config{PollInterval: time.Hour, MessagePageSize: 2})

	require.NoError(t, in.Select(context.Background(), directThread("a")))
	require.NoError(t, in.LoadOlder(context.Background()))

	state := in.State()
	require.Len(t, state.Messages, 3)
	assert.Equal(t, "a1", state.Messages[0].ID, "the earlier page lands in front")
	assert.Equal(t, "a2", state.Messages[1].ID)
	assert.Equal(t, "a3", state.Messages[2].ID)
	assert.Equal(t, 2, state.MessagesPage)

	fetched := fake.requests.Load()
	require.NoError(t, in.LoadOlder(context.Background()))
	assert.EqualValues(t, fetched, fake.requests.Load(), "every page is loaded; nothing more to fetch")
}

func TestStaleOlderPageDiscardedAfterReselect(t *testing.T) {
	fake := newPagedConversation()
	in := newInboxWith(t, fake.handler(), Config{PollInterval: time.Hour, MessagePageSize: 2})

	require.NoError(t, in.Select(context.Background(), directThread("a")))
	require.Len(t, in.State().Messages, 2)

	fake.hold.Store(true)
	older := make(chan error, 1)
	go func() { older <- in.LoadOlder(context.Background()) }()
	<-fake.entered

	fake.hold.Store(false)
	require.NoError(t, in.Select(context.Background(), directThread("b")))
	close(fake.release)
	require.NoError(t, <-older)

	state := in.State()
	require.NotNil(t, state.Selected)
	assert.Equal(t, "b", state.Selected.ThreadKey)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "b1", state.Messages[0].ID, "the late page of the deselected thread must be dropped")
	assert.Equal(t, 1, state.MessagesPage)
	assert.False(t, state.MessagesLoading)
}

func TestSelectMarksThreadRead(t *testing.T) {
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{"k1": {{ID: "m1", ThreadKey: "k1", Content: "hi"}}},
	}
	in := newTestInbox(t, fake)

	require.NoError(t, in.Select(context.Background(), directThread("k1")))
	assert.Eventually(t, func() bool { return fake.reads.Load() == 1 }, time.Second, 10*time.Millisecond,
		"selecting a thread must send the read receipt")
}

func TestMarkReadFailureKeepsHistory(t *testing.T) {
	fake := &backendFake{
		t:                t,
		threads:          []models.Thread{directThread("k1")},
		messagesByThread: map[string][]models.Message{"k1": {{ID: "m1", ThreadKey: "k1", Content: "hi"}}},
	}
	fake.failRead.Store(true)
	in := newTestInbox(t, fake)

	require.NoError(t, in.Select(context.Background(), directThread("k1")))
	require.Eventually(t, func() bool { return fake.reads.Load() == 1 }, time.Second, 10*time.Millisecond)

	state := in.State()
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "m1", state.Messages[0].ID)
	assert.Empty(t, state.Err, "a failed read receipt must not surface an error")
}

func TestCanceledLoadLeavesNoBanner(t *testing.T) {
	fake := &backendFake{t: t, threads: []models.Thread{directThread("k1")}}
	in := newTestInbox(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, in.LoadThreads(ctx, 1))
	assert.Empty(t, in.State().Err)
}

func TestCloseWaitsForReadReceipt(t *testing.T) {
	var receiptDone atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /messages/threads/{key}/read", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		receiptDone.Store(true)
		writeData(w, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /messages/threads/{key}/messages", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, models.Page[models.Message]{Pagination: models.PaginationInfo{CurrentPage: 1, TotalPages: 1}})
	})
	in := newInboxWith(t, mux, Config{PollInterval: time.Hour})

	require.NoError(t, in.Select(context.Background(), directThread("k1")))
	in.Close()
	assert.True(t, receiptDone.Load(), "the read receipt must complete before Close returns")
}
