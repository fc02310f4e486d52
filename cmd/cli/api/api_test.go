package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCall_DecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"validation failed","fields":{"minutes":"must be no less than 0"}}`))
	}))
	defer srv.Close()
	t.Setenv("SCREENTIME_API_URL", srv.URL)

	err := Call("POST", "/v1/screen-time", "tok", map[string]int{"minutes": -1}, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "validation failed" || apiErr.Fields["minutes"] == "" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestCall_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization: got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"tokens":5}`))
	}))
	defer srv.Close()
	t.Setenv("SCREENTIME_API_URL", srv.URL)

	var out struct {
		Tokens int `json:"tokens"`
	}
	if err := Call("GET", "/v1/me", "tok", nil, &out); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out.Tokens != 5 {
		t.Errorf("tokens: got %d", out.Tokens)
	}
}

func TestCallAuthed_NotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := CallAuthed("GET", "/v1/me", nil, nil); err == nil {
		t.Fatal("expected error without a saved token")
	}
}
