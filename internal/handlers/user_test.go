package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/screentime/internal/models"
)

func TestUserHandler_Me(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, week, minutes FROM screen_time WHERE user_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "week", "minutes"}).AddRow(2, testLatest, 120))
	mock.ExpectQuery(`SELECT total_tokens FROM tokens`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"total_tokens"}).AddRow(33))

	rr := httptest.NewRecorder()
	h := &UserHandler{DB: db}
	h.Me(rr, asUser(httptest.NewRequest("GET", "/v1/me", nil), 2, "bob", models.RoleMember))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		User       models.User              `json:"user"`
		Tokens     int                      `json:"tokens"`
		ScreenTime []models.ScreenTimeEntry `json:"screen_time"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.User.Username != "bob" || out.Tokens != 33 || len(out.ScreenTime) != 1 || out.ScreenTime[0].Minutes != 120 {
		t.Errorf("unexpected body: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_Me_Unauthenticated(t *testing.T) {
	rr := httptest.NewRecorder()
	(&UserHandler{}).Me(rr, httptest.NewRequest("GET", "/v1/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestUserHandler_RecordScreenTime_NormalizesWeek(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// 2026-10-14 is a Wednesday; the entry is stored under Monday 2026-10-12.
	mock.ExpectQuery(`INSERT INTO screen_time`).
		WithArgs(2, testLatest, 240).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "week", "minutes"}).AddRow(2, testLatest, 240))

	rr := httptest.NewRecorder()
	req := jsonRequest("POST", "/v1/screen-time", []byte(`{"week":"2026-10-14","minutes":240}`))
	(&UserHandler{DB: db, Now: testNow}).RecordScreenTime(rr, asUser(req, 2, "bob", models.RoleMember))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var entry models.ScreenTimeEntry
	if err := json.NewDecoder(rr.Body).Decode(&entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !entry.Week.Equal(testLatest) || entry.Minutes != 240 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserHandler_RecordScreenTime_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing week", `{"minutes":10}`, "week"},
		{"bad date", `{"week":"14/10/2026","minutes":10}`, "week"},
		{"negative minutes", `{"week":"2026-10-12","minutes":-1}`, "minutes"},
		{"more than a week", `{"week":"2026-10-12","minutes":20000}`, "minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := jsonRequest("POST", "/v1/screen-time", []byte(tt.body))
			(&UserHandler{Now: testNow}).RecordScreenTime(rr, asUser(req, 2, "bob", models.RoleMember))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
			var out struct {
				Fields map[string]string `json:"fields"`
			}
			json.NewDecoder(rr.Body).Decode(&out)
			if _, ok := out.Fields[tt.field]; !ok {
				t.Errorf("expected field %q in %v", tt.field, out.Fields)
			}
		})
	}
}

func TestUserHandler_RecordScreenTime_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO screen_time`).WillReturnError(sql.ErrTxDone)

	rr := httptest.NewRecorder()
	req := jsonRequest("POST", "/v1/screen-time", []byte(`{"week":"2026-10-12","minutes":5}`))
	(&UserHandler{DB: db, Now: testNow}).RecordScreenTime(rr, asUser(req, 2, "bob", models.RoleMember))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestUserHandler_RecordScreenTime_RejectsFutureWeek(t *testing.T) {
	tests := []struct {
		name string
		week string
		want int
	}{
		{"far future", "2099-12-31", http.StatusBadRequest},
		{"next monday", "2026-10-19", http.StatusBadRequest},
		{"sunday of current week", "2026-10-18", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()
			if tt.want == http.StatusOK {
				mock.ExpectQuery(`INSERT INTO screen_time`).
					WithArgs(3, testLatest, 0).
					WillReturnRows(sqlmock.NewRows([]string{"user_id", "week", "minutes"}).AddRow(3, testLatest, 0))
			}

			rr := httptest.NewRecorder()
			req := jsonRequest("POST", "/v1/screen-time", []byte(`{"week":"`+tt.week+`","minutes":0}`))
			(&UserHandler{DB: db, Now: testNow}).RecordScreenTime(rr, asUser(req, 3, "mallory", models.RoleMember))

			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
			if tt.want == http.StatusBadRequest {
				var out struct {
					Fields map[string]string `json:"fields"`
				}
				json.NewDecoder(rr.Body).Decode(&out)
				if out.Fields["week"] != "future" {
					t.Errorf("expected week field error, got %v", out.Fields)
				}
			}
			// A rejected week must never reach the database.
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("expectations: %v", err)
			}
		})
	}
}
