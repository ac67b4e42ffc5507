package api

import (
	"context"
	"net/http"

	"github.com/tranminh/clubhub/internal/app/models"
)

// unreadCountPayload is the shape of the unread-count response
type unreadCountPayload struct {
	Count int `json:"count"`
}

// ListNotifications returns one page of the current user's notifications,
// most recent first.
func (c *Client) ListNotifications(ctx context.Context, page, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", pageQuery(page, limit), nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns how many notifications are unread
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var payload unreadCountPayload
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// MarkNotificationRead flips a single notification's read flag
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/notifications/"+id+"/read", nil, nil, nil)
}

// MarkAllNotificationsRead flips every notification's read flag
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/notifications/read-all", nil, nil, nil)
}
