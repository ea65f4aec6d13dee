// SPDX-License-Identifier: EPL-2.0

// Package handler is the HTTP surface of the web app.
package handler

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ik5/moodmix/internal/auth"
	"github.com/ik5/moodmix/internal/blob"
	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/store"
)

type Mixer interface {
	MixMedia(ctx context.Context, mediaID string) ([]byte, error)
	MixURL(ctx context.Context, audioURL string, mood model.Mood) ([]byte, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Store          store.Store
	Bucket         blob.Bucket
	Mixer          Mixer
	Images         ImageGenerator
	Sessions       *auth.Sessions
	Logger         *zap.Logger
	PublicURL      string
	MaxUploadBytes int64
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Deps
	pages map[string]*template.Template
}

func NewHandlers(deps Deps) (*Handlers, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Handlers{Deps: deps, pages: pages}, nil
}

// RouterOptions configures the outer middleware.
type RouterOptions struct {
	CORSOrigins []string
	// Files, when set, is mounted at /files to serve bucket objects.
	Files http.Handler
}

// Router wires every route.
func (h *Handlers) Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(Logging(h.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	if opts.Files != nil {
		r.Mount("/files", http.StripPrefix("/files", opts.Files))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.LoadUser)

		r.With(auth.RequireUser).Get("/", h.Home)

		r.Group(func(r chi.Router) {
			r.Use(auth.RedirectIfUser)
			r.Get("/login", h.LoginPage)
			r.Post("/login", h.Login)
			r.Get("/register", h.RegisterPage)
			r.Post("/register", h.Register)
		})
		r.Post("/logout", h.Logout)
		r.Delete("/logout", h.Logout)

		r.Get("/upload", h.UploadPage)
		r.Post("/upload", h.Upload)
		r.Get("/record", h.RecordPage)
		r.Post("/save-audio", h.SaveAudio)
		r.Post("/upload-local", h.UploadLocal)
		r.Get("/fetch-recorded-files", h.FetchRecordedFiles)
		r.Get("/uploadnote", h.NotesPage)

		r.Route("/media/{id}", func(r chi.Router) {
			r.Get("/", h.MediaPage)
			r.Get("/mix.wav", h.MixWAV)
		})
		r.Post("/mix-audio", h.MixAudio)

		r.Get("/imagepage", h.ImagePage)
		r.Post("/generate", h.Generate)
	})

	return r
}

// Server wraps the router with the timeouts the app runs under.
func Server(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
	}
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
