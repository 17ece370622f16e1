// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/service"
)

// ControlHandler serves the controller's session commands. Every command
// answers 200 with a TransitionResult; a stale command has applied=false.
type ControlHandler struct {
	svc *service.Service
}

func NewControlHandler(svc *service.Service) *ControlHandler {
	return &ControlHandler{svc: svc}
}

func controllerKey(r *http.Request) string {
	return r.Header.Get(middleware.ControllerKeyHeader)
}

func (h *ControlHandler) respond(w http.ResponseWriter, r *http.Request, res models.TransitionResult, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Start handles POST /polls/{id}/start
func (h *ControlHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.ControlRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.svc.StartSession(r.Context(), chi.URLParam(r, "id"), controllerKey(r), req.IfVersion)
	h.respond(w, r, res, err)
}

// Advance handles POST /polls/{id}/advance
func (h *ControlHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req models.AdvanceRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.IfVersion == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "if_version is required")
		return
	}

	res, err := h.svc.Advance(r.Context(), chi.URLParam(r, "id"), controllerKey(r), req.AutoReveal, *req.IfVersion)
	h.respond(w, r, res, err)
}

// Reveal handles POST /polls/{id}/reveal
func (h *ControlHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionCommandRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.QuestionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	res, err := h.svc.Reveal(r.Context(), chi.URLParam(r, "id"), controllerKey(r), req.QuestionID, req.IfVersion)
	h.respond(w, r, res, err)
}

// Jump handles POST /polls/{id}/jump
func (h *ControlHandler) Jump(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionCommandRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.QuestionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	res, err := h.svc.JumpTo(r.Context(), chi.URLParam(r, "id"), controllerKey(r), req.QuestionID, req.IfVersion)
	h.respond(w, r, res, err)
}

// End handles POST /polls/{id}/end
func (h *ControlHandler) End(w http.ResponseWriter, r *http.Request) {
	var req models.ControlRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.svc.EndSession(r.Context(), chi.URLParam(r, "id"), controllerKey(r), req.IfVersion)
	h.respond(w, r, res, err)
}

// SetStatus handles POST /polls/{id}/status
func (h *ControlHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req models.SetStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !req.Status.Valid() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown status")
		return
	}

	res, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), controllerKey(r), req.Status, req.IfVersion)
	h.respond(w, r, res, err)
}
