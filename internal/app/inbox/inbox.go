package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

// Config carries the inbox tuning knobs
type Config struct {
	// PollInterval is how often the thread list and active conversation
	// refresh while a thread is selected.
	PollInterval time.Duration
	// ThreadPageSize is the fixed thread list page size
	ThreadPageSize int
	// MessagePageSize is the fixed conversation page size
	MessagePageSize int
}

// State is a point-in-time copy of the inbox for rendering
type State struct {
	Threads           []models.Thread
	ThreadsPage       int
	ThreadsPagination models.PaginationInfo
	ThreadsLoading    bool

	Selected           *models.Thread
	Messages           []models.Message
	MessagesPage       int
	MessagesPagination models.PaginationInfo
	MessagesLoading    bool

	Sending bool
	Err     string
}

// Inbox orchestrates the thread list pane, the conversation pane, the
// composer and new-thread creation. Every list mutation goes through a
// generation token so a stale response can never overwrite newer state.
type Inbox struct {
	api      *api.Client
	sessions *session.Store
	cfg      Config

	mu                 sync.Mutex
	threads            []models.Thread
	threadsPage        int
	threadsPagination  models.PaginationInfo
	threadsLoading     bool
	selected           *models.Thread
	messages           []models.Message
	messagesPage       int
	messagesPagination models.PaginationInfo
	messagesLoading    bool
	sending            bool
	errMsg             string
	composer           composer

	// Generation tokens, bumped whenever a pane's content is invalidated.
	// A load captures the token before its fetch and applies the result only
	// while the token is still current.
	threadsGen  uint64
	messagesGen uint64

	pollCancel context.CancelFunc
	pollWG     sync.WaitGroup
	markWG     sync.WaitGroup

	logger zerolog.Logger
}

// New creates an Inbox. The session store resolves the current user for
// participant construction and message alignment.
func New(client *api.Client, sessions *session.Store, cfg Config) *Inbox {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 8 * time.Second
	}
	if cfg.ThreadPageSize <= 0 {
		cfg.ThreadPageSize = 20
	}
	if cfg.MessagePageSize <= 0 {
		cfg.MessagePageSize = 20
	}
	return &Inbox{
		api:         client,
		sessions:    sessions,
		cfg:         cfg,
		threadsPage: 1,
		logger:      logger.With("inbox"),
	}
}

// State returns a copy of the current inbox state
func (in *Inbox) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()

	state := State{
		ThreadsPage:        in.threadsPage,
		ThreadsPagination:  in.threadsPagination,
		ThreadsLoading:     in.threadsLoading,
		MessagesPage:       in.messagesPage,
		MessagesPagination: in.messagesPagination,
		MessagesLoading:    in.messagesLoading,
		Sending:            in.sending,
		Err:                in.errMsg,
	}
	state.Threads = make([]models.Thread, len(in.threads))
	copy(state.Threads, in.threads)
	state.Messages = make([]models.Message, len(in.messages))
	copy(state.Messages, in.messages)
	if in.selected != nil {
		selected := *in.selected
		state.Selected = &selected
	}
	return state
}

// CurrentUserID resolves the current user from the persisted session
func (in *Inbox) CurrentUserID() string {
	current := in.sessions.Current()
	if current == nil {
		return ""
	}
	return current.User.ID
}

// LoadThreads fetches one page of threads and replaces the full list. There
// is no incremental merge: a thread that appeared between polls shows up on
// the next full load.
func (in *Inbox) LoadThreads(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	in.mu.Lock()
	in.threadsLoading = true
	in.errMsg = ""
	in.threadsGen++
	gen := in.threadsGen
	in.mu.Unlock()

	result, err := in.api.ListThreads(ctx, page, in.cfg.ThreadPageSize)

	in.mu.Lock()
	defer in.mu.Unlock()

	if gen != in.threadsGen {
		// A newer load superseded this one while it was in flight
		in.logger.Debug().Int("page", page).Msg("Dropping stale thread list response")
		return nil
	}

	in.threadsLoading = false
	if err != nil {
		// A load interrupted by our own cancellation is not a user-facing
		// failure.
		if ctx.Err() == nil {
			in.errMsg = errorText(err, "Could not load conversations.")
		}
		return err
	}

	in.threads = result.Items
	in.threadsPagination = result.Pagination
	in.threadsPage = page
	return nil
}

// Select makes a thread the active conversation: the message buffer clears,
// page 1 loads in chronological order, mark-read fires independently, and the
// poll loop restarts for the new thread. Any in-flight load for the previous
// thread is invalidated.
func (in *Inbox) Select(ctx context.Context, thread models.Thread) error {
	in.mu.Lock()
	selected := thread
	in.selected = &selected
	in.messages = nil
	in.messagesPage = 1
	in.messagesPagination = models.PaginationInfo{}
	in.messagesGen++
	in.mu.Unlock()

	in.startPolling(thread.ThreadKey)

	// Mark-read is deliberately independent of the message load: a transient
	// failure here must never hide history, so it is only logged.
	in.markWG.Add(1)
	go func(threadKey string) {
		defer in.markWG.Done()
		if err := in.api.MarkThreadRead(context.WithoutCancel(ctx), threadKey); err != nil {
			in.logger.Error().Err(err).Str("threadKey", threadKey).Msg("Failed to mark thread read")
		}
	}(thread.ThreadKey)

	return in.loadMessages(ctx, thread.ThreadKey, 1, true)
}

// LoadOlder prepends the next (earlier) message page to the buffer. It is a
// no-op once every page is loaded.
func (in *Inbox) LoadOlder(ctx context.Context) error {
	in.mu.Lock()
	if in.selected == nil {
		in.mu.Unlock()
		return apperrors.ErrNoThreadSelected
	}
	if in.messagesPage >= in.messagesPagination.TotalPages {
		in.mu.Unlock()
		return nil
	}
	threadKey := in.selected.ThreadKey
	nextPage := in.messagesPage + 1
	in.mu.Unlock()

	return in.loadMessages(ctx, threadKey, nextPage, false)
}

// loadMessages fetches one message page. The backend returns newest first;
// the page is reversed to chronological order, then either replaces the
// buffer (replace=true) or is prepended in front of the already-loaded tail.
func (in *Inbox) loadMessages(ctx context.Context, threadKey string, page int, replace bool) error {
	in.mu.Lock()
	in.messagesLoading = true
	in.errMsg = ""
	in.messagesGen++
	gen := in.messagesGen
	in.mu.Unlock()

	result, err := in.api.ListThreadMessages(ctx, threadKey, page, in.cfg.MessagePageSize)

	in.mu.Lock()
	defer in.mu.Unlock()

	if gen != in.messagesGen {
		in.logger.Debug().
			Str("threadKey", threadKey).
			Int("page", page).
			Msg("Dropping stale message page response")
		return nil
	}

	in.messagesLoading = false
	if err != nil {
		if ctx.Err() == nil {
			in.errMsg = errorText(err, "Could not load messages.")
		}
		return err
	}

	chronological := make([]models.Message, len(result.Items))
	for i, msg := range result.Items {
		chronological[len(result.Items)-1-i] = msg
	}

	if replace {
		in.messages = chronological
	} else {
		in.messages = append(chronological, in.messages...)
	}
	in.messagesPagination = result.Pagination
	in.messagesPage = page
	return nil
}

// TogglePin pins or unpins a thread, then reloads the full thread list so
// the view converges on the server's pin state.
func (in *Inbox) TogglePin(ctx context.Context, thread models.Thread) error {
	var err error
	if thread.Meta.IsPinned {
		err = in.api.UnpinThread(ctx, thread.ThreadKey)
	} else {
		err = in.api.PinThread(ctx, thread.ThreadKey)
	}
	if err != nil {
		in.mu.Lock()
		in.errMsg = errorText(err, "Could not update the pin state.")
		in.mu.Unlock()
		return err
	}

	in.mu.Lock()
	page := in.threadsPage
	in.mu.Unlock()
	return in.LoadThreads(ctx, page)
}

// Send submits the composer. It refuses while a send is in flight or while
// the composer has neither trimmed content nor attachments; no network call
// happens in either case. On success the composer clears and the active
// conversation and thread list reload concurrently.
func (in *Inbox) Send(ctx context.Context) error {
	in.mu.Lock()
	if in.selected == nil {
		in.mu.Unlock()
		return apperrors.ErrNoThreadSelected
	}
	if in.sending {
		in.mu.Unlock()
		return apperrors.ErrSendInFlight
	}
	content, attachments := in.composer.payload()
	if content == "" && len(attachments) == 0 {
		in.mu.Unlock()
		return apperrors.ErrEmptyMessage
	}
	in.sending = true
	in.errMsg = ""
	threadKey := in.selected.ThreadKey
	threadsPage := in.threadsPage
	in.mu.Unlock()

	_, err := in.api.SendThreadMessage(ctx, threadKey, api.SendMessageRequest{
		Content:     content,
		Attachments: attachments,
	})

	in.mu.Lock()
	in.sending = false
	if err != nil {
		in.errMsg = errorText(err, "Could not send the message.")
		in.mu.Unlock()
		return err
	}
	in.composer.clear()
	in.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = in.loadMessages(ctx, threadKey, 1, true)
	}()
	go func() {
		defer wg.Done()
		_ = in.LoadThreads(ctx, threadsPage)
	}()
	wg.Wait()
	return nil
}

// startPolling restarts the refresh loop for the given thread. While a
// thread is selected, every PollInterval the thread list reloads at its
// current page and the active conversation reloads page 1. Reselection and
// Close cancel the previous loop so no timer keeps fetching for a thread
// that is no longer selected.
func (in *Inbox) startPolling(threadKey string) {
	in.stopPolling()

	ctx, cancel := context.WithCancel(context.Background())
	in.mu.Lock()
	in.pollCancel = cancel
	in.mu.Unlock()

	in.pollWG.Add(1)
	go func() {
		defer in.pollWG.Done()

		ticker := time.NewTicker(in.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				in.mu.Lock()
				page := in.threadsPage
				stillSelected := in.selected != nil && in.selected.ThreadKey == threadKey
				in.mu.Unlock()
				if !stillSelected {
					return
				}

				if err := in.LoadThreads(ctx, page); err != nil {
					in.logger.Debug().Err(err).Msg("Thread list poll failed")
				}
				if err := in.loadMessages(ctx, threadKey, 1, true); err != nil {
					in.logger.Debug().Err(err).Str("threadKey", threadKey).Msg("Conversation poll failed")
				}
			}
		}
	}()
}

// stopPolling cancels the active poll loop, if any
func (in *Inbox) stopPolling() {
	in.mu.Lock()
	cancel := in.pollCancel
	in.pollCancel = nil
	in.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	in.pollWG.Wait()
}

// Close stops the poll loop, waits out any pending mark-read call and
// invalidates in-flight loads.
func (in *Inbox) Close() {
	in.stopPolling()
	in.markWG.Wait()

	in.mu.Lock()
	in.threadsGen++
	in.messagesGen++
	in.selected = nil
	in.mu.Unlock()
}

// errorText extracts a human-readable message from an API error, falling
// back to the given generic text.
func errorText(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
