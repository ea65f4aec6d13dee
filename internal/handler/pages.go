// SPDX-License-Identifier: EPL-2.0

package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ik5/moodmix/internal/auth"
	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "login", "register", "upload", "record",
	"uploadnote", "media", "imagepage", "notfound",
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2 Jan 2006 15:04") },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return pages, nil
}

type pageData struct {
	Title   string
	Name    string
	Flashes []string
	Moods   []model.Mood
	Media   *mediaView
	Notes   []mediaView
}

type mediaView struct {
	ID         string
	Filename   string
	Message    string
	UploadedBy string
	Mood       model.Mood
	FileURL    string
	QRURL      string
	PageURL    string
	MixURL     string
	CreatedAt  time.Time
}

// render executes into a buffer first so a template error still yields a
// clean 500.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := h.pages[page]
	if !ok {
		h.writeError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	if data.Name == "" {
		data.Name = displayName(r)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		h.writeError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// displayName is the logged-in username or "Guest".
func displayName(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return u.Username
	}
	return "Guest"
}

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", pageData{Title: "Home"})
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", pageData{Title: "Log in", Flashes: h.Sessions.Flashes(w, r)})
}

func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", pageData{Title: "Register", Flashes: h.Sessions.Flashes(w, r)})
}

func (h *Handlers) UploadPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "upload", pageData{Title: "Upload", Moods: model.Moods})
}

func (h *Handlers) RecordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "record", pageData{Title: "Record"})
}

func (h *Handlers) ImagePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "imagepage", pageData{Title: "Image"})
}

// NotesPage lists the current user's uploads.
func (h *Handlers) NotesPage(w http.ResponseWriter, r *http.Request) {
	name := displayName(r)

	list, err := h.Store.MediaByUsername(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	notes := make([]mediaView, 0, len(list))
	for i := range list {
		notes = append(notes, h.mediaView(r, &list[i]))
	}

	h.render(w, r, http.StatusOK, "uploadnote", pageData{Title: "Notes", Name: name, Notes: notes})
}

// MediaPage is the page a QR code leads to. Its player loads the
// server-side mix.
func (h *Handlers) MediaPage(w http.ResponseWriter, r *http.Request) {
	m, err := h.Store.MediaByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, "notfound", pageData{Title: "Media not found"})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := h.mediaView(r, m)
	h.render(w, r, http.StatusOK, "media", pageData{Title: m.Filename, Media: &view})
}

// mediaView resolves object URLs. A missing object leaves its URL empty.
func (h *Handlers) mediaView(r *http.Request, m *model.Media) mediaView {
	v := mediaView{
		ID:         m.ID,
		Filename:   m.Filename,
		Message:    m.Message,
		UploadedBy: m.UploadedBy,
		Mood:       m.Mood,
		PageURL:    h.PublicURL + "/media/" + m.ID,
		MixURL:     "/media/" + m.ID + "/mix.wav",
		CreatedAt:  m.CreatedAt,
	}

	var err error
	if v.FileURL, err = h.Bucket.URL(r.Context(), m.FileObject); err != nil {
		h.Logger.Warn("sign media file", zap.String("object", m.FileObject), zap.Error(err))
	}
	if v.QRURL, err = h.Bucket.URL(r.Context(), m.QRObject); err != nil {
		h.Logger.Warn("sign qr code", zap.String("object", m.QRObject), zap.Error(err))
	}

	return v
}
