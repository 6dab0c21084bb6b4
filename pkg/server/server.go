// Package server exposes the command surface over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/voxbrowse/pkg/dispatch"
	"github.com/entrhq/voxbrowse/pkg/favorites"
	"github.com/entrhq/voxbrowse/pkg/logging"
	"github.com/entrhq/voxbrowse/pkg/youtube"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 5 * time.Second

// Assistant is the part of the dispatcher the server drives.
type Assistant interface {
	Handle(ctx context.Context, utterance string) dispatch.Outcome
	Favorites() *favorites.Store
	YouTube() *youtube.Controller
}

// CommandRequest is the body of POST /v1/commands.
type CommandRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// CommandResponse reports what a command did.
type CommandResponse struct {
	RequestID string   `json:"request_id"`
	Intent    string   `json:"intent"`
	Handled   bool     `json:"handled"`
	Spoken    []string `json:"spoken"`
	Reply     string   `json:"reply"`
	Action    string   `json:"action,omitempty"`
	Close     bool     `json:"close"`
}

// FavoriteRequest is the body of PUT /v1/favorites/{category}.
type FavoriteRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

type ctxKey struct{}

// Server is the HTTP front end.
type Server struct {
	assistant Assistant
	router    *chi.Mux
	validate  *validator.Validate
	logger    *logging.Logger
	onClose   func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCloseHook is called after a command closes the session.
func WithCloseHook(fn func()) Option {
	return func(s *Server) { s.onClose = fn }
}

// New builds the router for a.
func New(a Assistant, opts ...Option) *Server {
	s := &Server{
		assistant: a,
		validate:  validator.New(),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/commands", s.handleCommand)
		r.Get("/favorites", s.handleListFavorites)
		r.Put("/favorites/{category}", s.handleSetFavorite)
		r.Get("/videos", s.handleVideos)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.logger.Infof("HTTP server stopped")
	return nil
}

// requestID tags each request with a uuid, echoed in the response header.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(RequestIDHeader, id)
		s.logger.Debugf("[%s] %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCommand runs one utterance through the dispatcher.
// POST /v1/commands
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())

	var req CommandRequest
	if !s.decode(w, r, &req) {
		return
	}

	out := s.assistant.Handle(r.Context(), req.Text)
	resp := CommandResponse{
		RequestID: id,
		Handled:   out.Handled(),
		Spoken:    out.Spoken,
		Reply:     out.Reply(),
		Action:    out.Action,
		Close:     out.Close,
	}
	if resp.Spoken == nil {
		resp.Spoken = []string{}
	}
	if out.Intent != nil {
		resp.Intent = out.Intent.Kind().String()
	}
	s.logger.Infof("[%s] command %q -> %s", id, req.Text, resp.Intent)

	writeJSON(w, http.StatusOK, resp)

	if out.Close && s.onClose != nil {
		s.onClose()
	}
}

// GET /v1/favorites
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Favorites().Entries())
}

// handleSetFavorite binds a category to a site.
// PUT /v1/favorites/{category}
func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		s.fail(w, r, http.StatusBadRequest, "category required")
		return
	}

	var req FavoriteRequest
	if !s.decode(w, r, &req) {
		return
	}

	url, err := s.assistant.Favorites().Set(category, req.URL)
	if err != nil {
		s.logger.Errorf("[%s] Failed to save favorite %s: %v", RequestID(r.Context()), category, err)
		s.fail(w, r, http.StatusInternalServerError, "favorite set but not saved")
		return
	}
	writeJSON(w, http.StatusOK, favorites.Entry{Category: strings.ToLower(category), URL: url})
}

// GET /v1/videos
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	videos := s.assistant.YouTube().Videos()
	if videos == nil {
		videos = []youtube.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

// decode reads and validates a JSON body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.fail(w, r, http.StatusBadRequest, fmt.Sprintf("invalid field %s: %s", strings.ToLower(verrs[0].Field()), verrs[0].Tag()))
			return false
		}
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{RequestID: RequestID(r.Context()), Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
