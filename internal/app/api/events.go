package api

import (
	"context"
	"net/http"

	"github.com/tranminh/clubhub/internal/app/models"
)

// JoinEventRequest is the payload for joining an event
type JoinEventRequest struct {
	UserID string `json:"userId"`
}

// ListEvents returns every event
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent returns a single event with its participant list
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodGet, "/events/"+id, nil, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// JoinEvent adds the user to the event's participants. The backend treats a
// repeated join as a no-op; callers additionally hide the action once the
// fetched participant list already contains the user.
func (c *Client) JoinEvent(ctx context.Context, eventID, userID string) error {
	return c.do(ctx, http.MethodPost, "/events/participants/"+eventID, nil, JoinEventRequest{UserID: userID}, nil)
}
