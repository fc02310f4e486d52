package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatic_ServesStylesheet(t *testing.T) {
	rr := httptest.NewRecorder()
	Static().ServeHTTP(rr, httptest.NewRequest("GET", "/static/app.css", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("content type: got %q", ct)
	}
	if !strings.Contains(rr.Body.String(), ".balance") {
		t.Error("stylesheet body missing page rules")
	}
}

// Pages are served with style-src 'self' and no script-src, so the templates
// must not carry inline styles or scripts.
func TestTemplates_NoInlineStyleOrScript(t *testing.T) {
	for _, name := range pageNames {
		rr := httptest.NewRecorder()
		data := pageData{SignedIn: true, Admin: true, Username: "alice", Error: "x"}
		renderTemplate(rr, http.StatusOK, name, data)
		body := rr.Body.String()
		for _, bad := range []string{"<style", "style=", "<script", "onclick="} {
			if strings.Contains(body, bad) {
				t.Errorf("%s: found %q", name, bad)
			}
		}
		if !strings.Contains(body, `href="/static/app.css"`) {
			t.Errorf("%s: stylesheet link missing", name)
		}
	}
}
