package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facultydesk/facultydesk/internal/auth"
	"github.com/facultydesk/facultydesk/internal/config"
	"github.com/facultydesk/facultydesk/internal/sheets"
	"github.com/facultydesk/facultydesk/internal/status"
)

type fakeBuilder struct {
	report status.Report
	err    error
}

func (f *fakeBuilder) BuildShared(ctx context.Context) (status.Report, error) {
	return f.report, f.err
}

func testServer(builder ReportBuilder) *Server {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Addr:                ":0",
		DevMode:             true,
		ServiceAccountEmail: "service@facultydesk.iam.gserviceaccount.com",
	}

	sessions := auth.NewSessions("test-secret", "admin@example.com", "hunter2", "")

	return New(&cfg, sessions, builder, nil)
}

func sessionCookie(t *testing.T, s *Server) *http.Cookie {
	t.Helper()

	request := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"admin@example.com","password":"hunter2"}`))
	request.Header.Set("Content-Type", "application/json")

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)

	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == auth.SessionCookie {
			require.True(t, cookie.HttpOnly)
			return cookie
		}
	}

	t.Fatal("no session cookie in login response")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := testServer(&fakeBuilder{})

	cookie := sessionCookie(t, s)
	assert.NotEmpty(t, cookie.Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := testServer(&fakeBuilder{})

	request := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	request.Header.Set("Content-Type", "application/json")

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
}

func TestFacultyStatusRequiresSession(t *testing.T) {
	s := testServer(&fakeBuilder{})

	request := httptest.NewRequest("GET", "/api/faculty-status", nil)
	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	assert.Equal(t, http.StatusUnauthorized, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestFacultyStatusRejectsTamperedCookie(t *testing.T) {
	s := testServer(&fakeBuilder{})

	request := httptest.NewRequest("GET", "/api/faculty-status", nil)
	request.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "tampered"})

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	assert.Equal(t, http.StatusUnauthorized, response.Code)
}

func TestFacultyStatusReturnsReport(t *testing.T) {
	report := status.Report{
		"Faculty A": {"Unit Test": true, "Model": false},
		"Faculty B": {"Unit Test": false, "Model": false},
	}

	s := testServer(&fakeBuilder{report: report})

	request := httptest.NewRequest("GET", "/api/faculty-status", nil)
	request.AddCookie(sessionCookie(t, s))

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)

	var body status.Report
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	assert.Equal(t, report, body)
}

func TestFacultyStatusRefreshesSession(t *testing.T) {
	s := testServer(&fakeBuilder{report: status.Report{}})

	request := httptest.NewRequest("GET", "/api/faculty-status", nil)
	request.AddCookie(sessionCookie(t, s))

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)

	refreshed := false
	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == auth.SessionCookie && cookie.Value != "" {
			refreshed = true
		}
	}

	assert.True(t, refreshed, "expected the session cookie to be re-issued")
}

func TestFacultyStatusAccessDenied(t *testing.T) {
	s := testServer(&fakeBuilder{err: fmt.Errorf("%w for spreadsheet sheet-b", sheets.ErrAccessDenied)})

	request := httptest.NewRequest("GET", "/api/faculty-status", nil)
	request.AddCookie(sessionCookie(t, s))

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusInternalServerError, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))

	assert.Contains(t, body["error"], "share")
	assert.Contains(t, body["error"], "service@facultydesk.iam.gserviceaccount.com")
	assert.Equal(t, "service@facultydesk.iam.gserviceaccount.com", body["serviceAccount"])
}

func TestSessionEndpoint(t *testing.T) {
	s := testServer(&fakeBuilder{})

	request := httptest.NewRequest("GET", "/api/session", nil)
	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)
	assert.Equal(t, http.StatusUnauthorized, response.Code)

	request = httptest.NewRequest("GET", "/api/session", nil)
	request.AddCookie(sessionCookie(t, s))

	response = httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	assert.Equal(t, "admin@example.com", body["email"])
}

func TestLogoutClearsCookie(t *testing.T) {
	s := testServer(&fakeBuilder{})

	request := httptest.NewRequest("POST", "/api/logout", nil)
	request.AddCookie(sessionCookie(t, s))

	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)

	cleared := false
	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == auth.SessionCookie && cookie.Value == "" && cookie.MaxAge < 0 {
			cleared = true
		}
	}

	assert.True(t, cleared, "expected an expired empty session cookie")
}

func TestDashboardIsServed(t *testing.T) {
	s := testServer(&fakeBuilder{})

	request := httptest.NewRequest("GET", "/", nil)
	response := httptest.NewRecorder()
	s.Router().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "Faculty Status Dashboard")
}
