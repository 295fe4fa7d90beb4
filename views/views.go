// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookieName = "flash"

// Page is the data passed to every template.
type Page struct {
	Title       string
	Flash       string
	CurrentUser *models.User
	Candidates  []models.Candidate
	Vote        *models.Vote
	Tally       []models.TallyEntry
	TotalVotes  int
	Voters      []models.VoterRow
	Users       []*models.User
	CurrentYear int
}

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
}

// Renderer holds the parsed page templates. Each page is parsed together
// with the base layout so every page can define its own "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

var pageNames = []string{
	"login.html",
	"register.html",
	"vote.html",
	"vote_done.html",
	"admin_dashboard.html",
	"voters.html",
	"candidates.html",
}

// New parses the embedded templates. The templates ship inside the binary,
// so a parse failure is a programming error and panics.
func New() *Renderer {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		r.pages[name] = template.Must(
			template.New(name).Funcs(functions).ParseFS(templateFS, "templates/base.html", "templates/"+name),
		)
	}
	return r
}

// Render writes the named page. A pending flash message is consumed and
// shown. Rendering goes through a buffer so a template error never leaves
// a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data *Page) {
	if data == nil {
		data = &Page{}
	}
	if data.Flash == "" {
		data.Flash = PopFlash(w, r)
	}
	if data.CurrentYear == 0 {
		data.CurrentYear = time.Now().Year()
	}

	ts, ok := rd.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		slog.Error("failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// SetFlash stores a one-shot message shown on the next rendered page.
func SetFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending flash message, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	message, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(message)
}
