package inbox

import (
	"strconv"
	"strings"

	"github.com/tranminh/clubhub/internal/app/models"
)

// ThreadTitle derives a display title for a thread. A USER_CLUB thread is
// named after its club; otherwise the non-self participant labels are
// joined, with a per-type fallback when nothing labels itself.
func ThreadTitle(thread models.Thread, currentUserID string) string {
	if thread.Type == models.ThreadUserClub {
		for _, participant := range thread.Participants {
			if participant.Club != nil && participant.Club.Name != "" {
				return "CLUB_" + participant.Club.Name
			}
		}
	}

	var labels []string
	for _, participant := range thread.Participants {
		if label := participantLabel(participant, currentUserID); label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) > 0 {
		return strings.Join(labels, ", ")
	}

	switch thread.Type {
	case models.ThreadClubBroadcast:
		return "Club announcement"
	case models.ThreadEvent:
		return "Event discussion"
	}
	return "Conversation"
}

// participantLabel names one participant entry, hiding the current user
func participantLabel(participant models.Participant, currentUserID string) string {
	switch {
	case participant.User != nil:
		if currentUserID != "" && participant.User.ID == currentUserID {
			return ""
		}
		if participant.User.Name != "" {
			return participant.User.Name
		}
		return "User"
	case participant.Club != nil:
		return "Club: " + participant.Club.Name
	case participant.Event != nil:
		return "Event: " + participant.Event.Title
	}
	return ""
}

// LastMessagePreview summarizes a thread's last message for the list pane
func LastMessagePreview(thread models.Thread) string {
	if thread.LastMessage == nil {
		return ""
	}
	if thread.LastMessage.Content != "" {
		return thread.LastMessage.Content
	}
	switch n := len(thread.LastMessage.Attachments); {
	case n == 1:
		return "1 attachment"
	case n > 1:
		return strconv.Itoa(n) + " attachments"
	}
	return ""
}
