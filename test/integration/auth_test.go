//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	server := newServer(t)

	registerUser(t, server, "alice@example.com", "secret123", "Alice", "")

	session := login(t, server, "alice@example.com", "secret123")

	meResp := doJSON(t, http.MethodGet, server.URL+"/api/auth/me", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decodeData(t, meResp, &me)
	require.Equal(t, "alice@example.com", me.Email)
	require.Equal(t, "user", me.Role)

	// Refresh token travels only via the cookie, never in a body.
	refreshResp := doJSON(t, http.MethodPost, server.URL+"/api/auth/refresh-token", nil, "", session.RefreshCookie)
	require.Equal(t, http.StatusOK, refreshResp.StatusCode)

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, refreshResp, &refreshed)
	require.NotEmpty(t, refreshed.AccessToken)

	// Refresh is not one-time-use: the same cookie works again, and the
	// original access token is still valid.
	secondRefresh := doJSON(t, http.MethodPost, server.URL+"/api/auth/refresh-token", nil, "", session.RefreshCookie)
	require.Equal(t, http.StatusOK, secondRefresh.StatusCode)

	meAgain := doJSON(t, http.MethodGet, server.URL+"/api/auth/me", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, meAgain.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := newServer(t)

	registerUser(t, server, "alice@example.com", "secret123", "Alice", "")

	payload, err := json.Marshal(map[string]string{
		"email": "Alice@Example.com", "password": "secret123", "name": "Imposter",
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "EMAIL_EXIST", errorCode(t, resp))
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := newServer(t)

	registerUser(t, server, "alice@example.com", "secret123", "Alice", "")

	payload, err := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong"})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "INVALID_CREDENTIALS", errorCode(t, resp))
}

func TestSecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	server := newServer(t)

	registerUser(t, server, "alice@example.com", "secret123", "Alice", "")

	first := login(t, server, "alice@example.com", "secret123")
	second := login(t, server, "alice@example.com", "secret123")

	// The single refresh-token slot now holds the second login's token.
	staleResp := doJSON(t, http.MethodPost, server.URL+"/api/auth/refresh-token", nil, "", first.RefreshCookie)
	require.Equal(t, http.StatusUnauthorized, staleResp.StatusCode)
	require.Equal(t, "TOKEN_INVALID", errorCode(t, staleResp))

	liveResp := doJSON(t, http.MethodPost, server.URL+"/api/auth/refresh-token", nil, "", second.RefreshCookie)
	require.Equal(t, http.StatusOK, liveResp.StatusCode)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	server := newServer(t)

	registerUser(t, server, "alice@example.com", "secret123", "Alice", "")
	session := login(t, server, "alice@example.com", "secret123")

	logoutResp := doJSON(t, http.MethodPost, server.URL+"/api/auth/logout", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)

	refreshResp := doJSON(t, http.MethodPost, server.URL+"/api/auth/refresh-token", nil, "", session.RefreshCookie)
	require.Equal(t, http.StatusUnauthorized, refreshResp.StatusCode)
	require.Equal(t, "TOKEN_INVALID", errorCode(t, refreshResp))

	// Logout is idempotent.
	again := doJSON(t, http.MethodPost, server.URL+"/api/auth/logout", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, again.StatusCode)
}

func TestProtectedEndpointsRejectMissingOrBadTokens(t *testing.T) {
	server := newServer(t)

	noToken := doJSON(t, http.MethodGet, server.URL+"/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, noToken.StatusCode)

	badToken := doJSON(t, http.MethodGet, server.URL+"/api/projects/", nil, "garbage")
	require.Equal(t, http.StatusUnauthorized, badToken.StatusCode)
}

func TestUserAdministration(t *testing.T) {
	server := newServer(t)

	registerUser(t, server, "alice@example.com", "secret123", "Alice", "")
	registerUser(t, server, "bob@example.com", "secret123", "Bob", "")

	alice := login(t, server, "alice@example.com", "secret123")
	bob := login(t, server, "bob@example.com", "secret123")
	admin := login(t, server, "admin@example.com", "admin-pass")

	// Listing is admin-only.
	forbidden := doJSON(t, http.MethodGet, server.URL+"/api/users/", nil, alice.AccessToken)
	require.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	listResp := doJSON(t, http.MethodGet, server.URL+"/api/users/", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	// A non-admin cannot update someone else's record.
	update := map[string]string{"name": "Mallory"}
	denied := doJSON(t, http.MethodPut, server.URL+"/api/users/"+bob.UserID, update, alice.AccessToken)
	require.Equal(t, http.StatusForbidden, denied.StatusCode)
	require.Equal(t, "FORBIDDEN", errorCode(t, denied))

	// Self-update works; admin updates anyone.
	selfUpdate := doJSON(t, http.MethodPut, server.URL+"/api/users/"+alice.UserID, update, alice.AccessToken)
	require.Equal(t, http.StatusOK, selfUpdate.StatusCode)

	adminUpdate := doJSON(t, http.MethodPut, server.URL+"/api/users/"+bob.UserID, map[string]string{"name": "Robert"}, admin.AccessToken)
	require.Equal(t, http.StatusOK, adminUpdate.StatusCode)

	// Deletion is admin-only.
	deleteDenied := doJSON(t, http.MethodDelete, server.URL+"/api/users/"+bob.UserID, nil, alice.AccessToken)
	require.Equal(t, http.StatusForbidden, deleteDenied.StatusCode)

	deleteResp := doJSON(t, http.MethodDelete, server.URL+"/api/users/"+bob.UserID, nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)
}
