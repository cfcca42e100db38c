// Package api wires the HTTP surface: note CRUD, text assist, and health.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marginalia-app/marginalia/internal/assist"
	"github.com/marginalia-app/marginalia/internal/auth"
	"github.com/marginalia-app/marginalia/internal/errs"
	"github.com/marginalia-app/marginalia/internal/notes"
	"github.com/marginalia-app/marginalia/internal/obs"
	"github.com/marginalia-app/marginalia/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler wraps the services behind the HTTP surface.
type Handler struct {
	notesService  *notes.Service
	assistService *assist.Service
	db            *store.DB
}

// NewHandler creates the API handler.
func NewHandler(notesService *notes.Service, assistService *assist.Service, db *store.DB) *Handler {
	return &Handler{
		notesService:  notesService,
		assistService: assistService,
		db:            db,
	}
}

// RegisterRoutes registers all API routes on the given mux. Note routes
// always require a verified identity; assist routes only when
// aiRequireAuth is set.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, authMW *auth.Middleware, aiRequireAuth bool) {
	mux.Handle("GET /api/notes", authMW.RequireAuth(http.HandlerFunc(h.ListNotes)))
	mux.Handle("GET /api/notes/{id}", authMW.RequireAuth(http.HandlerFunc(h.GetNote)))
	mux.Handle("POST /api/notes", authMW.RequireAuth(http.HandlerFunc(h.CreateNote)))
	mux.Handle("PUT /api/notes/{id}", authMW.RequireAuth(http.HandlerFunc(h.UpdateNote)))
	mux.Handle("DELETE /api/notes/{id}", authMW.RequireAuth(http.HandlerFunc(h.DeleteNote)))

	gate := func(next http.Handler) http.Handler {
		if aiRequireAuth {
			return authMW.RequireAuth(next)
		}
		return next
	}
	mux.Handle("POST /api/ai/summarize", gate(http.HandlerFunc(h.Summarize)))
	mux.Handle("POST /api/ai/improve", gate(http.HandlerFunc(h.Improve)))
	mux.Handle("POST /api/ai/ideas", gate(http.HandlerFunc(h.Ideas)))

	mux.HandleFunc("GET /api/test", h.Health)
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	result, err := h.notesService.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notesService.Get(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var params notes.CreateNoteParams
	if !decodeJSON(w, r, &params) {
		return
	}

	note, err := h.notesService.Create(r.Context(), auth.UserIDFromContext(r.Context()), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var params notes.UpdateNoteParams
	if !decodeJSON(w, r, &params) {
		return
	}

	note, err := h.notesService.Update(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.notesService.Delete(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssistRequest is the request body for the assist endpoints. The ideas
// endpoint accepts topic as an alias for text.
type AssistRequest struct {
	Text  string `json:"text"`
	Topic string `json:"topic"`
}

// AssistResponse wraps assist output under a single stable key.
type AssistResponse struct {
	Result string `json:"result"`
}

// Summarize handles POST /api/ai/summarize.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req AssistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.assistService.Summarize(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AssistResponse{Result: result})
}

// Improve handles POST /api/ai/improve.
func (h *Handler) Improve(w http.ResponseWriter, r *http.Request) {
	var req AssistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.assistService.Improve(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AssistResponse{Result: result})
}

// Ideas handles POST /api/ai/ideas.
func (h *Handler) Ideas(w http.ResponseWriter, r *http.Request) {
	var req AssistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := req.Text
	if input == "" {
		input = req.Topic
	}

	result, err := h.assistService.Ideas(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AssistResponse{Result: result})
}

// Health handles GET /api/test. Always 200; a store problem is logged but
// does not fail the probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		obs.From(r.Context()).With("pkg", "api").Warn("health_store_ping_failed", "error", err.Error())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// decodeJSON decodes a capped JSON body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, errs.New(errs.InvalidArgument, "request body too large"))
			return false
		}
		writeError(w, r, errs.Wrap(errs.InvalidArgument, "invalid JSON body", err))
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError converts a coded error to the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	status := errs.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		obs.From(r.Context()).With("pkg", "api").Error("request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", string(code),
			"error", err.Error(),
		)
	}
	writeJSON(w, status, ErrorResponse{Error: errs.MessageOf(err)})
}
