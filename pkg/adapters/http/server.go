package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/internal/sanitize"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/aretw0/canopy/pkg/screen"
	"github.com/aretw0/canopy/pkg/tree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodySize caps PUT and POST bodies.
const DefaultMaxBodySize = 1 << 20

// Screens is the part of the runtime the HTTP surface drives.
// *screen.Manager implements it.
type Screens interface {
	Get(ctx context.Context, name string) (*domain.Node, error)
	Put(ctx context.Context, name string, data []byte) (*domain.Node, error)
	Patch(ctx context.Context, name string, patches ...domain.Patch) (*domain.Node, int, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Subscribe(ctx context.Context, name string) <-chan screen.Update
	Version(name string) uint64
}

var _ Screens = (*screen.Manager)(nil)

// Server exposes Screens over HTTP.
type Server struct {
	Screens Screens

	logger      *slog.Logger
	metrics     http.Handler
	maxBody     int64
	maxTextSize int
	readOnly    bool
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxBodySize limits request bodies.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithMaxTextSize limits each content string carried by a patch.
// Zero uses the sanitize package default.
func WithMaxTextSize(n int) Option {
	return func(s *Server) { s.maxTextSize = n }
}

// WithReadOnly disables PUT, DELETE and patches.
func WithReadOnly() Option {
	return func(s *Server) { s.readOnly = true }
}

// NewHandler creates a new HTTP handler for the screens.
func NewHandler(screens Screens, opts ...Option) http.Handler {
	s := &Server{
		Screens: screens,
		logger:  logging.NewNop(),
		maxBody: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/screens", func(r chi.Router) {
		r.Get("/", s.ListScreens)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetScreen)
			r.Get("/nodes/{id}", s.GetNode)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/ws", s.ScreenSocket)
			r.Group(func(r chi.Router) {
				r.Use(s.writable)
				r.Put("/", s.PutScreen)
				r.Delete("/", s.DeleteScreen)
				r.Post("/patches", s.PatchScreen)
			})
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.readOnly {
			http.Error(w, "server is read-only", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"app":            "canopy-http",
		"version":        strings.TrimSpace(canopy.Version),
		"api_version":    apiVersion,
		"schema_version": domain.SchemaVersion,
	})
}

// ListScreens handles GET /screens.
func (s *Server) ListScreens(w http.ResponseWriter, r *http.Request) {
	names, err := s.Screens.List(r.Context())
	if err != nil {
		s.fail(w, "List failed", err, http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"screens": names})
}

// GetScreen handles GET /screens/{name}.
func (s *Server) GetScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	root, err := s.Screens.Get(r.Context(), name)
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	w.Header().Set("X-Canopy-Version", fmt.Sprint(s.Screens.Version(name)))
	writeJSON(w, http.StatusOK, root)
}

// GetNode handles GET /screens/{name}/nodes/{id}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	root, err := s.Screens.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	n, ok := tree.FindByID(root, id)
	if !ok {
		http.Error(w, fmt.Sprintf("node %q not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// PutScreen handles PUT /screens/{name}. The body is stored verbatim once it decodes.
func (s *Server) PutScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusRequestEntityTooLarge)
		return
	}
	root, err := s.Screens.Put(r.Context(), name, body)
	if err != nil {
		if errors.Is(err, decoder.ErrParsingFailed) || errors.Is(err, decoder.ErrInvalidEncoding) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			s.logger.Warn("PutScreen: payload rejected", "screen", name, "err", err)
			return
		}
		s.fail(w, "Put failed", err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Canopy-Version", fmt.Sprint(s.Screens.Version(name)))
	writeJSON(w, http.StatusOK, root)
}

// DeleteScreen handles DELETE /screens/{name}.
func (s *Server) DeleteScreen(w http.ResponseWriter, r *http.Request) {
	if err := s.Screens.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "Delete failed", err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PatchResult is the body of a successful POST /screens/{name}/patches.
type PatchResult struct {
	Matches int          `json:"matches"`
	Version uint64       `json:"version"`
	Root    *domain.Node `json:"root"`
}

// PatchScreen handles POST /screens/{name}/patches. The body is either one
// patch object or an array of them.
func (s *Server) PatchScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusRequestEntityTooLarge)
		return
	}
	patches, err := decoder.ParsePatchSet(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid patch: %v", err), http.StatusBadRequest)
		s.logger.Warn("PatchScreen: invalid body", "screen", name, "err", err)
		return
	}
	if err := sanitize.Patches(patches, s.maxTextSize); err != nil {
		http.Error(w, fmt.Sprintf("Invalid patch: %v", err), http.StatusBadRequest)
		s.logger.Warn("PatchScreen: input rejected", "screen", name, "err", err)
		return
	}

	root, matches, err := s.Screens.Patch(r.Context(), name, patches...)
	if err != nil {
		s.loadFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PatchResult{Matches: matches, Version: s.Screens.Version(name), Root: root})
}

// loadFailed maps the loader taxonomy onto status codes.
func (s *Server) loadFailed(w http.ResponseWriter, err error) {
	switch loader.KindOf(err) {
	case loader.ResourceNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case loader.DecodeFailed:
		s.fail(w, "Decode failed", err, http.StatusUnprocessableEntity)
	default:
		s.fail(w, "Load failed", err, http.StatusInternalServerError)
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error, status int) {
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), status)
	s.logger.Error(msg, "err", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
