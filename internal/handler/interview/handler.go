// Package interview serves the conversation endpoints for the interview
// room: upload, message, report, narration and the state feed.
package interview

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockmate/webapp/internal/middleware"
	"github.com/mockmate/webapp/internal/narrator"
	authservice "github.com/mockmate/webapp/internal/service/auth"
	interviewservice "github.com/mockmate/webapp/internal/service/interview"
	"github.com/mockmate/webapp/pkg/utils"
)

// maxResumeBytes caps uploaded resume size at 10 MiB.
const maxResumeBytes = 10 << 20

// Handler drives one user's conversation controller over HTTP.
type Handler struct {
	registry *interviewservice.Registry
	hub      *narrator.Hub
	sessions *authservice.Store
}

// New creates the interview handler. hub may be nil when narration is
// disabled at deployment level.
func New(registry *interviewservice.Registry, hub *narrator.Hub, sessions *authservice.Store) *Handler {
	return &Handler{registry: registry, hub: hub, sessions: sessions}
}

// RegisterRoutes mounts the interview routes. All of them expect a gated
// request context.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interview/state", h.handleState)
	r.Post("/interview/upload", h.handleUpload)
	r.Post("/interview/message", h.handleMessage)
	r.Post("/interview/end", h.handleEnd)
	r.Post("/interview/report/dismiss", h.handleDismissReport)
	r.Post("/interview/narration", h.handleNarration)
	r.Post("/interview/reset", h.handleReset)
	if h.hub != nil {
		r.Get("/interview/ws", h.handleSocket)
	}
}

func (h *Handler) controller(r *http.Request) (*interviewservice.Controller, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return h.registry.For(session.User.ID), true
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxResumeBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if err := ctrl.Upload(r.Context(), header.Filename, file); err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.Submit(r.Context(), req.Text); err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := ctrl.EndInterview(r.Context()); err != nil {
		if errors.Is(err, interviewservice.ErrBusy) {
			respondControllerError(w, err)
			return
		}
		// Report failures keep the overlay closed and the conversation
		// usable; nothing else to surface.
		utils.RespondError(w, http.StatusBadGateway, "report generation failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

func (h *Handler) handleDismissReport(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	ctrl.CloseReport()
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

type narrationRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleNarration(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req narrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl.SetNarration(req.Enabled)
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := ctrl.Reset(); err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.State())
}

// handleSocket attaches the browser's narration channel. The connection is
// torn down when the auth session signs out, via the store subscription.
func (h *Handler) handleSocket(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	sessionID, _ := middleware.SessionIDFromContext(r.Context())

	events, unsubscribe, err := h.sessions.Subscribe(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case event, open := <-events:
				if !open || event.Type == authservice.EventSignedOut {
					h.hub.CloseUser(session.User.ID)
					return
				}
			}
		}
	}()

	if err := h.hub.Attach(w, r, session.User.ID); err != nil {
		log.Printf("[interview] narration socket for user=%s closed: %v", session.User.ID, err)
	}
}

func respondControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interviewservice.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "message must not be empty")
	case errors.Is(err, interviewservice.ErrBusy):
		utils.RespondError(w, http.StatusConflict, "another action is in flight")
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
