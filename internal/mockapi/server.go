// Package mockapi serves an in-memory users API with the same surface as the
// public mock the client talks to by default. Unlike that service it keeps
// writes for the lifetime of the process.
package mockapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/rail44/roster/internal/log"
	"github.com/rail44/roster/internal/row"
)

var logger = log.Named("mockapi")

// Options configures the router.
type Options struct {
	// Resource is the collection path segment; defaults to "users".
	Resource string
	// RequestsPerMinute enables per-IP rate limiting when positive.
	RequestsPerMinute int
}

type handler struct {
	store *Store
}

// NewRouter builds the HTTP handler for store.
func NewRouter(store *Store, opts Options) http.Handler {
	if opts.Resource == "" {
		opts.Resource = "users"
	}
	h := &handler{store: store}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(accessLog)
	if opts.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(opts.RequestsPerMinute, time.Minute))
	}

	r.Route("/"+opts.Resource, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.patch)
		r.Put("/{id}", h.replace)
		r.Delete("/{id}", h.delete)
	})
	return r
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, row.Row{})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	body, ok := readRow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, h.store.Create(body))
}

func (h *handler) patch(w http.ResponseWriter, r *http.Request) {
	body, ok := readRow(w, r)
	if !ok {
		return
	}
	u, found := h.store.Patch(chi.URLParam(r, "id"), body)
	if !found {
		writeJSON(w, http.StatusNotFound, row.Row{})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) replace(w http.ResponseWriter, r *http.Request) {
	body, ok := readRow(w, r)
	if !ok {
		return
	}
	u, found := h.store.Replace(chi.URLParam(r, "id"), body)
	if !found {
		writeJSON(w, http.StatusNotFound, row.Row{})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, row.Row{})
		return
	}
	writeJSON(w, http.StatusOK, row.Row{})
}

func readRow(w http.ResponseWriter, r *http.Request) (row.Row, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, row.Row{"error": err.Error()})
		return nil, false
	}
	body, err := row.Decode(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, row.Row{"error": err.Error()})
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

// requestID echoes the caller's X-Request-ID, generating one when absent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("handled request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", w.Header().Get("X-Request-ID")))
	})
}
