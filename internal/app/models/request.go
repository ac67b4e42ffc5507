package models

import "time"

// RequestStatus represents the state of a membership request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// MembershipRequest is a student's ask to join a club, arbitrated by the
// club's manager. Transitions are one-way terminal; re-submission after a
// rejection creates a new request. The backend keeps at most one pending
// request per (student, club) pair and the client assumes that.
type MembershipRequest struct {
	ID        string        `json:"id"`
	StudentID string        `json:"studentId"`
	ClubID    string        `json:"clubId"`
	Message   string        `json:"message,omitempty"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Terminal reports whether the request can no longer change state
func (r *MembershipRequest) Terminal() bool {
	return r.Status == RequestStatusAccepted || r.Status == RequestStatusRejected
}

// RequestStats summarizes request volumes for manager dashboards
type RequestStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}
