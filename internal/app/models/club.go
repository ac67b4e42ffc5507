package models

import "time"

// ClubStatus represents the moderation state of a club
type ClubStatus string

const (
	// ClubStatusPending is the state of a freshly created club awaiting admin review
	ClubStatusPending  ClubStatus = "pending"
	ClubStatusApproved ClubStatus = "approved"
	ClubStatusRejected ClubStatus = "rejected"
)

// ClubMember is a membership entry inside a club
type ClubMember struct {
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Club represents a student club. Clubs are created by managers in pending
// state and become visible to students once an admin approves them.
type Club struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	LogoURL     string       `json:"logoUrl,omitempty"`
	Status      ClubStatus   `json:"status"`
	ManagerID   string       `json:"managerId"`
	Members     []ClubMember `json:"members"`
}

// HasMember reports whether userID already belongs to the club
func (c *Club) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
