package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminh/clubhub/internal/app/models"
)

func TestTokenForwardedVerbatim(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"id":"u1","name":"a","email":"a@x","role":"student"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, func() string { return "raw-token-no-bearer" })
	_, err := client.GetMyProfile(context.Background())
	require.NoError(t, err)

	// The token is sent exactly as stored, with no Bearer prefix added
	assert.Equal(t, "raw-token-no-bearer", gotAuth)
}

func TestNoAuthorizationHeaderWhenLoggedOut(t *testing.T) {
	var hadHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadHeader = r.Header["Authorization"]
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, func() string { return "" })
	_, err := client.ListEvents(context.Background())
	require.NoError(t, err)
	assert.False(t, hadHeader)
}

func TestEnvelopeUnwrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clubs", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"c1","name":"Chess Club","status":"approved"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	clubs, err := client.ListClubs(context.Background())
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, "Chess Club", clubs[0].Name)
	assert.Equal(t, models.ClubStatusApproved, clubs[0].Status)
}

func TestLoginDecodesWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x", body["email"])

		w.Write([]byte(`{"token":"tok","user":{"id":"u1","name":"A","email":"a@x","role":"admin"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	session, err := client.Login(context.Background(), LoginRequest{Email: "a@x", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, models.RoleAdmin, session.User.Role)
	assert.True(t, session.IsValid())
}

func TestErrorPayloadSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Login(context.Background(), LoginRequest{Email: "a@x", Password: "bad"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestErrorPrefersErrorFieldOverMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"from error field","message":"from message field"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.ChangePassword(context.Background(), ChangePasswordRequest{OldPassword: "a", NewPassword: "b"})
	require.Error(t, err)
	assert.Equal(t, "from error field", err.Error())
}

func TestNonJSONErrorBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.ListClubs(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, "request failed with status 502", err.Error())
}

func TestPaginatedListDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/threads", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":{"items":[{"threadKey":"k1","type":"DIRECT"}],` +
			`"pagination":{"currentPage":2,"totalPages":3,"pageSize":20,"totalItems":41}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	page, err := client.ListThreads(context.Background(), 2, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "k1", page.Items[0].ThreadKey)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.EqualValues(t, 41, page.Pagination.TotalItems)
}

func TestUpdateUserOmitsZeroFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// A block call sends the status alone
		assert.Equal(t, map[string]interface{}{"status": "blocked"}, body)
		w.Write([]byte(`{"data":{"id":"u2","name":"B","email":"b@x","role":"student","status":"blocked"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	user, err := client.BlockUser(context.Background(), "u2", models.UserStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBlocked, user.Status)
}
