package models

import "time"

// EventParticipant is a participation entry inside an event
type EventParticipant struct {
	UserID string `json:"userId"`
}

// Event represents a campus event open to authenticated non-admin users
type Event struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Date         time.Time          `json:"date"`
	Location     string             `json:"location"`
	ImageURL     string             `json:"imageUrl,omitempty"`
	Participants []EventParticipant `json:"participants"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// HasParticipant reports whether userID already joined the event
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
