package models

import "time"

// Notification is a read-only message to the current user; the client may
// only flip the read flag, individually or in bulk.
type Notification struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
