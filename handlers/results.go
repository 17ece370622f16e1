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

type ResultsHandler struct {
	svc *service.Service
}

func NewResultsHandler(svc *service.Service) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// GetPoll handles GET /polls/{id}
func (h *ResultsHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	agg, err := h.svc.GetPollAggregate(r.Context(), chi.URLParam(r, "id"), controllerKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, agg)
}

// ResolveSlug handles GET /groups/{group}/polls/{slug}
func (h *ResultsHandler) ResolveSlug(w http.ResponseWriter, r *http.Request) {
	pollID, err := h.svc.ResolveSlug(r.Context(), chi.URLParam(r, "group"), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ResolveSlugResponse{PollID: pollID})
}

// GetTally handles GET /polls/{id}/questions/{qid}/tally
func (h *ResultsHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTally(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "qid"), controllerKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, t)
}

// GetLeaderboard handles GET /polls/{id}/leaderboard
func (h *ResultsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.svc.GetLeaderboard(r.Context(), chi.URLParam(r, "id"), controllerKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, lb)
}
