package views

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
)

// EventListView is the public event browsing screen
type EventListView struct {
	api *api.Client

	Events  []models.Event
	Loading bool
	Err     string
}

// NewEventListView creates the event list controller
func NewEventListView(client *api.Client) *EventListView {
	return &EventListView{api: client}
}

// Load fetches the event list
func (v *EventListView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	events, err := v.api.ListEvents(ctx)
	if err != nil {
		v.Err = errorMessage(err, "Could not load events.")
		return err
	}
	v.Events = events
	return nil
}

// EventDetailView is the event detail screen with the join action
type EventDetailView struct {
	api      *api.Client
	sessions *session.Store

	Event   *models.Event
	Joined  bool
	CanJoin bool
	Loading bool
	Err     string
}

// NewEventDetailView creates the event detail controller
func NewEventDetailView(client *api.Client, sessions *session.Store) *EventDetailView {
	return &EventDetailView{api: client, sessions: sessions}
}

// Load fetches the event and derives the join state: the action shows only
// for authenticated non-admin users who are not already participants.
func (v *EventDetailView) Load(ctx context.Context, eventID string) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	event, err := v.api.GetEvent(ctx, eventID)
	if err != nil {
		v.Err = errorMessage(err, "Could not load the event.")
		return err
	}
	v.Event = event

	current := v.sessions.Current()
	if current == nil || current.User.Role == models.RoleAdmin {
		v.Joined = false
		v.CanJoin = false
		return nil
	}

	v.Joined = event.HasParticipant(current.User.ID)
	v.CanJoin = !v.Joined
	return nil
}

// Join adds the current user to the event. The membership check is repeated
// here so a double submit stays idempotent client-side.
func (v *EventDetailView) Join(ctx context.Context) error {
	v.Err = ""

	current := v.sessions.Current()
	if current == nil || v.Event == nil || !v.CanJoin {
		return nil
	}
	if v.Event.HasParticipant(current.User.ID) {
		v.Joined = true
		v.CanJoin = false
		return nil
	}

	if err := v.api.JoinEvent(ctx, v.Event.ID, current.User.ID); err != nil {
		v.Err = errorMessage(err, "Could not join the event.")
		return err
	}

	return v.Load(ctx, v.Event.ID)
}
