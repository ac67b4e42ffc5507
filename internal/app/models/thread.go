package models

import (
	"errors"
	"time"
)

// ThreadType scopes a conversation to one participant shape
type ThreadType string

const (
	// ThreadDirect is a user-to-user conversation
	ThreadDirect ThreadType = "DIRECT"
	// ThreadUserClub is a conversation between club members and the club itself
	ThreadUserClub ThreadType = "USER_CLUB"
	// ThreadClubBroadcast is a one-way club announcement channel
	ThreadClubBroadcast ThreadType = "CLUB_BROADCAST"
	// ThreadEvent is a conversation scoped to an event
	ThreadEvent ThreadType = "EVENT"
)

// ParticipantKind identifies which variant a participant entry carries
type ParticipantKind string

const (
	ParticipantUser  ParticipantKind = "user"
	ParticipantClub  ParticipantKind = "club"
	ParticipantEvent ParticipantKind = "event"
)

// ErrAmbiguousParticipant is returned when a participant entry does not carry
// exactly one populated reference.
var ErrAmbiguousParticipant = errors.New("participant must reference exactly one of user, club or event")

// ParticipantRef is the write-side participant entry used when creating a
// thread. Exactly one ID field is set; use the constructors rather than
// building the struct by hand.
type ParticipantRef struct {
	UserID  string `json:"userId,omitempty"`
	ClubID  string `json:"clubId,omitempty"`
	EventID string `json:"eventId,omitempty"`
}

// UserRef builds a participant reference to a user
func UserRef(id string) ParticipantRef { return ParticipantRef{UserID: id} }

// ClubRef builds a participant reference to a club
func ClubRef(id string) ParticipantRef { return ParticipantRef{ClubID: id} }

// EventRef builds a participant reference to an event
func EventRef(id string) ParticipantRef { return ParticipantRef{EventID: id} }

// Kind returns the populated variant, or an error when the entry is empty or
// carries more than one reference.
func (r ParticipantRef) Kind() (ParticipantKind, error) {
	var kind ParticipantKind
	n := 0
	if r.UserID != "" {
		kind = ParticipantUser
		n++
	}
	if r.ClubID != "" {
		kind = ParticipantClub
		n++
	}
	if r.EventID != "" {
		kind = ParticipantEvent
		n++
	}
	if n != 1 {
		return "", ErrAmbiguousParticipant
	}
	return kind, nil
}

// ParticipantClubInfo is the club payload of a read-side participant
type ParticipantClubInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParticipantEventInfo is the event payload of a read-side participant
type ParticipantEventInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Participant is the read-side participant entry returned inside a thread.
// Exactly one of User, Club or Event is populated.
type Participant struct {
	User  *User                 `json:"user,omitempty"`
	Club  *ParticipantClubInfo  `json:"club,omitempty"`
	Event *ParticipantEventInfo `json:"event,omitempty"`
}

// Kind returns the populated variant, or an error when the entry violates the
// one-reference invariant.
func (p Participant) Kind() (ParticipantKind, error) {
	var kind ParticipantKind
	n := 0
	if p.User != nil {
		kind = ParticipantUser
		n++
	}
	if p.Club != nil {
		kind = ParticipantClub
		n++
	}
	if p.Event != nil {
		kind = ParticipantEvent
		n++
	}
	if n != 1 {
		return "", ErrAmbiguousParticipant
	}
	return kind, nil
}

// IsUser reports whether the entry references the given user id
func (p Participant) IsUser(userID string) bool {
	return p.User != nil && p.User.ID == userID
}

// ThreadMeta carries per-viewer thread flags
type ThreadMeta struct {
	IsPinned bool `json:"isPinned"`
}

// Thread is a conversation aggregate identified by a stable key. Messages
// belong to the thread; the thread is the aggregate root.
type Thread struct {
	ThreadKey    string        `json:"threadKey"`
	Type         ThreadType    `json:"type"`
	Participants []Participant `json:"participants"`
	LastMessage  *Message      `json:"lastMessage,omitempty"`
	UnreadCount  int           `json:"unreadCount"`
	MessageCount int           `json:"messageCount"`
	Meta         ThreadMeta    `json:"meta"`
}

// Attachment is a self-contained inline file representation carried inside a
// message payload. URL holds the encoded content, so sending a message never
// involves a separate upload step.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Message is a single message inside a thread. Messages are immutable once
// sent.
type Message struct {
	ID          string       `json:"id"`
	ThreadKey   string       `json:"threadKey"`
	Sender      User         `json:"sender"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	IsRead      bool         `json:"isRead"`
}
