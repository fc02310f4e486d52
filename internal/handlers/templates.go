package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/screentime/internal/middleware"
	"github.com/crucial707/screentime/internal/models"
)

//go:embed templates
var templatesFS embed.FS

var pageNames = []string{"login.html", "register.html", "dashboard.html", "leaderboard.html", "error.html"}

var templateFuncs = template.FuncMap{
	"week":  func(t time.Time) string { return t.Format("2006-01-02") },
	"deref": func(p *int) int { return *p },
}

// pages holds one parsed template set per page, each combined with the layout.
var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	layout := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html"))
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t := template.Must(layout.Clone())
		out[name] = template.Must(t.ParseFS(templatesFS, "templates/"+name))
	}
	return out
}

// pageData is the view model shared by every page.
type pageData struct {
	SignedIn bool
	Admin    bool
	Username string
	Error    string

	Form struct{ Username string }

	TokenBalance int
	Entries      []models.ScreenTimeEntry
	Standings    []models.Standing
}

func newPageData(r *http.Request) pageData {
	var d pageData
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		d.SignedIn = true
		d.Admin = claims.IsAdmin()
		d.Username = claims.Username
	}
	return d
}

// renderTemplate executes a page into a buffer first so a template error
// never leaves a half-written 200 response.
func renderTemplate(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("template execute", "template", name, "error", err)
		http.Error(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
