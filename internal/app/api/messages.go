package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tranminh/clubhub/internal/app/models"
)

// CreateThreadRequest is the payload for opening a new conversation. The
// participant list is built per thread type; see inbox.NewThreadForm.
type CreateThreadRequest struct {
	Type         models.ThreadType       `json:"type"`
	Participants []models.ParticipantRef `json:"participants"`
	Label        string                  `json:"label,omitempty"`
	Content      string                  `json:"content,omitempty"`
}

// SendMessageRequest is the payload for sending a message into a thread.
// Attachments are self-contained inline representations; no upload endpoint
// is involved.
type SendMessageRequest struct {
	Content     string              `json:"content,omitempty"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// ListThreads returns one page of the current user's threads in server order
func (c *Client) ListThreads(ctx context.Context, page, limit int) (*models.Page[models.Thread], error) {
	var threads models.Page[models.Thread]
	if err := c.do(ctx, http.MethodGet, "/messages/threads", pageQuery(page, limit), nil, &threads); err != nil {
		return nil, err
	}
	return &threads, nil
}

// CreateThread opens a new conversation and returns it
func (c *Client) CreateThread(ctx context.Context, req CreateThreadRequest) (*models.Thread, error) {
	var thread models.Thread
	if err := c.do(ctx, http.MethodPost, "/messages/threads", nil, req, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// PinThread pins a thread for the current user
func (c *Client) PinThread(ctx context.Context, threadKey string) error {
	return c.do(ctx, http.MethodPut, "/messages/threads/"+threadKey+"/pin", nil, nil, nil)
}

// UnpinThread unpins a thread for the current user
func (c *Client) UnpinThread(ctx context.Context, threadKey string) error {
	return c.do(ctx, http.MethodPut, "/messages/threads/"+threadKey+"/unpin", nil, nil, nil)
}

// MarkThreadRead marks every message in the thread read for the current user
func (c *Client) MarkThreadRead(ctx context.Context, threadKey string) error {
	return c.do(ctx, http.MethodPut, "/messages/threads/"+threadKey+"/read", nil, nil, nil)
}

// ListThreadMessages returns one page of a thread's messages, newest first
func (c *Client) ListThreadMessages(ctx context.Context, threadKey string, page, limit int) (*models.Page[models.Message], error) {
	var messages models.Page[models.Message]
	path := "/messages/threads/" + threadKey + "/messages"
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &messages); err != nil {
		return nil, err
	}
	return &messages, nil
}

// SendThreadMessage sends a message into a thread
func (c *Client) SendThreadMessage(ctx context.Context, threadKey string, req SendMessageRequest) (*models.Message, error) {
	var message models.Message
	path := "/messages/threads/" + threadKey + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// SearchMessageUsers returns users matching the search term, for the
// new-thread recipient picker.
func (c *Client) SearchMessageUsers(ctx context.Context, search string, limit int) ([]models.User, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("limit", strconv.Itoa(limit))

	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/messages/users", q, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
