package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tranminh/clubhub/internal/app/models"
)

// RequestFilter narrows request listings; zero fields are omitted
type RequestFilter struct {
	ClubID    string
	StudentID string
	Status    models.RequestStatus
}

func (f RequestFilter) query() url.Values {
	q := url.Values{}
	if f.ClubID != "" {
		q.Set("clubId", f.ClubID)
	}
	if f.StudentID != "" {
		q.Set("studentId", f.StudentID)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	return q
}

// CreateRequestPayload is the student payload for asking to join a club
type CreateRequestPayload struct {
	StudentID string `json:"studentId"`
	ClubID    string `json:"clubId"`
	Message   string `json:"message,omitempty"`
}

// UpdateRequestStatusPayload transitions a request to accepted or rejected
type UpdateRequestStatusPayload struct {
	Status models.RequestStatus `json:"status"`
}

// ListRequests returns membership requests matching the filter
func (c *Client) ListRequests(ctx context.Context, filter RequestFilter) ([]models.MembershipRequest, error) {
	var requests []models.MembershipRequest
	if err := c.do(ctx, http.MethodGet, "/requests", filter.query(), nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// MyClubRequests returns requests targeting the clubs the current user
// manages.
func (c *Client) MyClubRequests(ctx context.Context, filter RequestFilter) ([]models.MembershipRequest, error) {
	var requests []models.MembershipRequest
	if err := c.do(ctx, http.MethodGet, "/requests/my-clubs", filter.query(), nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// CreateRequest submits a new membership request
func (c *Client) CreateRequest(ctx context.Context, payload CreateRequestPayload) (*models.MembershipRequest, error) {
	var request models.MembershipRequest
	if err := c.do(ctx, http.MethodPost, "/requests", nil, payload, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateRequestStatus accepts or rejects a request (club manager only)
func (c *Client) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.MembershipRequest, error) {
	var request models.MembershipRequest
	payload := UpdateRequestStatusPayload{Status: status}
	if err := c.do(ctx, http.MethodPut, "/requests/"+id+"/status", nil, payload, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// RequestStats returns request volume counters for manager dashboards
func (c *Client) RequestStats(ctx context.Context) (*models.RequestStats, error) {
	var stats models.RequestStats
	if err := c.do(ctx, http.MethodGet, "/requests/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
