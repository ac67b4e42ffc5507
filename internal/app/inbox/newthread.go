package inbox

import (
	"context"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
)

// NewThreadForm carries the new-thread modal's inputs. Which fields matter
// depends on Type; Validate and the participant construction enforce the
// per-type rules before any network call happens.
type NewThreadForm struct {
	Type models.ThreadType

	// RecipientIDs are the picked recipient users (DIRECT)
	RecipientIDs []string

	// ClubID / ClubName identify the picked club (USER_CLUB, CLUB_BROADCAST);
	// MemberIDs are the club's members, auto-loaded via PrepareClubForm.
	ClubID    string
	ClubName  string
	MemberIDs []string

	// EventID identifies the picked event (EVENT)
	EventID string

	// Label optionally overrides the derived conversation label
	Label string

	// Content is the optional first message
	Content string
}

// buildParticipants constructs the type-specific participants payload and
// the conversation label.
//
//	DIRECT          current user + each unique recipient, as {userId} entries;
//	                the current user is excluded from, then re-added to, the
//	                recipient set so it never appears twice
//	USER_CLUB       one {userId} per club member (deduplicated, current user
//	                included) plus one {clubId}; label defaults to CLUB_<name>
//	CLUB_BROADCAST  a single {clubId}
//	EVENT           a single {eventId}
func (f *NewThreadForm) buildParticipants(currentUserID string) ([]models.ParticipantRef, string, error) {
	switch f.Type {
	case models.ThreadDirect:
		if currentUserID == "" {
			return nil, "", apperrors.NewValidationError(apperrors.ErrNoCurrentUser, "Current user could not be resolved.")
		}

		unique := dedupe(f.RecipientIDs, currentUserID)
		if len(unique) == 0 {
			return nil, "", apperrors.NewValidationError(apperrors.ErrNoRecipients, "Select at least one recipient.")
		}

		participants := make([]models.ParticipantRef, 0, len(unique)+1)
		participants = append(participants, models.UserRef(currentUserID))
		for _, id := range unique {
			participants = append(participants, models.UserRef(id))
		}
		return participants, f.Label, nil

	case models.ThreadUserClub:
		if f.ClubID == "" {
			return nil, "", apperrors.NewValidationError(apperrors.ErrClubRequired, "Select one of your clubs.")
		}

		members := dedupe(append([]string{currentUserID}, f.MemberIDs...), "")
		participants := make([]models.ParticipantRef, 0, len(members)+1)
		for _, id := range members {
			participants = append(participants, models.UserRef(id))
		}
		participants = append(participants, models.ClubRef(f.ClubID))

		label := f.Label
		if label == "" {
			label = "CLUB_" + f.ClubName
		}
		return participants, label, nil

	case models.ThreadClubBroadcast:
		if f.ClubID == "" {
			return nil, "", apperrors.NewValidationError(apperrors.ErrClubRequired, "Select a club.")
		}
		return []models.ParticipantRef{models.ClubRef(f.ClubID)}, f.Label, nil

	case models.ThreadEvent:
		if f.EventID == "" {
			return nil, "", apperrors.NewValidationError(apperrors.ErrEventRequired, "Select an event.")
		}
		return []models.ParticipantRef{models.EventRef(f.EventID)}, f.Label, nil
	}

	return nil, "", apperrors.NewValidationError(nil, "Unknown conversation type.")
}

// dedupe keeps the first occurrence of each non-empty id, dropping excluded
func dedupe(ids []string, excluded string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == excluded {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// PrepareClubForm fills a USER_CLUB form from the picked club: its name for
// the label default and its member list for participant expansion.
func (in *Inbox) PrepareClubForm(ctx context.Context, form *NewThreadForm) error {
	club, err := in.api.GetClub(ctx, form.ClubID)
	if err != nil {
		return err
	}

	form.ClubName = club.Name
	form.MemberIDs = make([]string, 0, len(club.Members))
	for _, member := range club.Members {
		form.MemberIDs = append(form.MemberIDs, member.UserID)
	}
	return nil
}

// SearchUsers backs the DIRECT recipient picker
func (in *Inbox) SearchUsers(ctx context.Context, search string) ([]models.User, error) {
	return in.api.SearchMessageUsers(ctx, search, 50)
}

// MyClubs backs the USER_CLUB picker: the clubs the current user belongs to
func (in *Inbox) MyClubs(ctx context.Context) ([]models.Club, error) {
	return in.api.MyClubs(ctx)
}

// CreateThread validates the form, builds the participants payload, creates
// the thread, reloads the thread list from page 1 and selects the new
// thread, loading its first messages immediately.
func (in *Inbox) CreateThread(ctx context.Context, form NewThreadForm) (*models.Thread, error) {
	participants, label, err := form.buildParticipants(in.CurrentUserID())
	if err != nil {
		return nil, err
	}

	thread, err := in.api.CreateThread(ctx, api.CreateThreadRequest{
		Type:         form.Type,
		Participants: participants,
		Label:        label,
		Content:      form.Content,
	})
	if err != nil {
		in.mu.Lock()
		in.errMsg = errorText(err, "Could not create the conversation.")
		in.mu.Unlock()
		return nil, err
	}

	if err := in.LoadThreads(ctx, 1); err != nil {
		return thread, err
	}

	if thread.ThreadKey != "" {
		if err := in.Select(ctx, *thread); err != nil {
			return thread, err
		}
	}
	return thread, nil
}
