package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/screentime/internal/auth"
	"github.com/crucial707/screentime/internal/middleware"
)

var (
	testLatest   = time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	testPrevious = time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
)

// testNow is Wednesday of the latest test week.
func testNow() time.Time {
	return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
}

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testIssuer() *auth.Issuer {
	return auth.NewIssuer([]byte("test-secret"), time.Hour)
}

// testHash returns a cheap bcrypt hash so tests stay fast.
func testHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

// asUser attaches session claims to r as the Authenticate middleware would.
func asUser(r *http.Request, id int, username, role string) *http.Request {
	claims := &auth.Claims{UserID: id, Username: username, Role: role}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}
