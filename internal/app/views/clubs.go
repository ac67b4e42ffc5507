package views

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/app/session"
)

// ClubListView is the public club browsing screen
type ClubListView struct {
	api *api.Client

	Clubs   []models.Club
	Loading bool
	Err     string
}

// NewClubListView creates the club list controller
func NewClubListView(client *api.Client) *ClubListView {
	return &ClubListView{api: client}
}

// Load fetches the club list
func (v *ClubListView) Load(ctx context.Context) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	clubs, err := v.api.ListClubs(ctx)
	if err != nil {
		v.Err = errorMessage(err, "Could not load clubs.")
		return err
	}
	v.Clubs = clubs
	return nil
}

// MembershipState is the derived state behind the club detail action area
type MembershipState string

const (
	// MembershipNone shows the join-request action
	MembershipNone MembershipState = "none"
	// MembershipPending shows a pending indicator instead of the action
	MembershipPending MembershipState = "pending"
	// MembershipRejected shows the rejection and allows re-requesting
	MembershipRejected MembershipState = "rejected"
	// MembershipMember means the user already belongs to the club
	MembershipMember MembershipState = "member"
	// MembershipHidden means no action applies (logged out, or not a student)
	MembershipHidden MembershipState = "hidden"
)

// ClubDetailView is the club detail screen with the join-request flow
type ClubDetailView struct {
	api      *api.Client
	sessions *session.Store

	Club       *models.Club
	Membership MembershipState
	Loading    bool
	Err        string
}

// NewClubDetailView creates the club detail controller
func NewClubDetailView(client *api.Client, sessions *session.Store) *ClubDetailView {
	return &ClubDetailView{api: client, sessions: sessions, Membership: MembershipHidden}
}

// Load fetches the club and derives the membership state from the already
// fetched member list plus the student's latest request. The request action
// is hidden while a pending request exists and comes back only after a
// rejection.
func (v *ClubDetailView) Load(ctx context.Context, clubID string) error {
	v.Err = ""
	v.Loading = true
	defer func() { v.Loading = false }()

	club, err := v.api.GetClub(ctx, clubID)
	if err != nil {
		v.Err = errorMessage(err, "Could not load the club.")
		return err
	}
	v.Club = club
	v.Membership = MembershipHidden

	current := v.sessions.Current()
	if current == nil || current.User.Role != models.RoleStudent {
		return nil
	}

	if club.HasMember(current.User.ID) {
		v.Membership = MembershipMember
		return nil
	}

	requests, err := v.api.ListRequests(ctx, api.RequestFilter{
		ClubID:    clubID,
		StudentID: current.User.ID,
	})
	if err != nil {
		// The club still renders; only the action state degrades
		v.Membership = MembershipNone
		return nil
	}

	v.Membership = MembershipNone
	if len(requests) > 0 {
		latest := requests[len(requests)-1]
		switch latest.Status {
		case models.RequestStatusPending:
			v.Membership = MembershipPending
		case models.RequestStatusRejected:
			v.Membership = MembershipRejected
		case models.RequestStatusAccepted:
			v.Membership = MembershipMember
		}
	}
	return nil
}

// SubmitRequest sends a membership request; on success the pending state
// shows immediately without re-navigation.
func (v *ClubDetailView) SubmitRequest(ctx context.Context, message string) error {
	v.Err = ""

	current := v.sessions.Current()
	if current == nil || v.Club == nil {
		v.Err = "Sign in to request membership."
		return nil
	}

	_, err := v.api.CreateRequest(ctx, api.CreateRequestPayload{
		StudentID: current.User.ID,
		ClubID:    v.Club.ID,
		Message:   message,
	})
	if err != nil {
		v.Err = errorMessage(err, "Could not submit the request.")
		return err
	}

	v.Membership = MembershipPending
	return nil
}
