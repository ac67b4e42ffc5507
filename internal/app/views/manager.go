package views

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
)

// ManagerClubsView is the manager's table of the clubs they own, pending
// ones included. Mutations are followed by a full list reload.
type ManagerClubsView struct {
	api *api.Client

	Clubs   []models.Club
	Loading bool
	Err     string
}

// NewManagerClubsView creates the managed-clubs controller
func NewManagerClubsView(client *api.Client) *ManagerClubsView {
	return &ManagerClubsView{api: client}
}

// Load fetches the clubs the current user manages
func (v *ManagerClubsView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	clubs, err := v.api.MyManagedClubs(ctx)
	if err != nil {
		v.Err = errorMessage(err, "Could not load your clubs.")
		return err
	}
	v.Clubs = clubs
	return nil
}

// Create submits a new club. It comes back in pending state and stays
// invisible to students until an admin approves it.
func (v *ManagerClubsView) Create(ctx context.Context, req api.CreateClubRequest) error {
	v.Err = ""

	if _, err := v.api.CreateClub(ctx, req); err != nil {
		v.Err = errorMessage(err, "Could not create the club.")
		return err
	}
	return v.Load(ctx)
}

// Update edits a club, then reloads the table
func (v *ManagerClubsView) Update(ctx context.Context, id string, req api.UpdateClubRequest) error {
	v.Err = ""

	if _, err := v.api.UpdateClub(ctx, id, req); err != nil {
		v.Err = errorMessage(err, "Could not update the club.")
		return err
	}
	return v.Load(ctx)
}

// ManagerRequestsView is the manager's queue of membership requests for
// their clubs.
type ManagerRequestsView struct {
	api *api.Client

	Requests []models.MembershipRequest
	Stats    *models.RequestStats
	Filter   models.RequestStatus
	Loading  bool
	Err      string
}

// NewManagerRequestsView creates the request queue controller
func NewManagerRequestsView(client *api.Client) *ManagerRequestsView {
	return &ManagerRequestsView{api: client}
}

// Load fetches the requests for the manager's clubs along with the volume
// counters. A stats failure only drops the counters, not the queue.
func (v *ManagerRequestsView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	requests, err := v.api.MyClubRequests(ctx, api.RequestFilter{Status: v.Filter})
	if err != nil {
		v.Err = errorMessage(err, "Could not load membership requests.")
		return err
	}
	v.Requests = requests

	if stats, err := v.api.RequestStats(ctx); err == nil {
		v.Stats = stats
	}
	return nil
}

// SetFilter narrows the queue to one status and reloads
func (v *ManagerRequestsView) SetFilter(ctx context.Context, status models.RequestStatus) error {
	v.Filter = status
	return v.Load(ctx)
}

// Accept grants a pending request, then reloads the queue. Accepting also
// makes the backend add the student to the club's member list.
func (v *ManagerRequestsView) Accept(ctx context.Context, id string) error {
	return v.decide(ctx, id, models.RequestStatusAccepted)
}

// Reject declines a pending request, then reloads the queue
func (v *ManagerRequestsView) Reject(ctx context.Context, id string) error {
	return v.decide(ctx, id, models.RequestStatusRejected)
}

func (v *ManagerRequestsView) decide(ctx context.Context, id string, status models.RequestStatus) error {
	v.Err = ""

	if _, err := v.api.UpdateRequestStatus(ctx, id, status); err != nil {
		v.Err = errorMessage(err, "Could not update the request.")
		return err
	}
	return v.Load(ctx)
}
