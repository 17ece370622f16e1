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

type VotingHandler struct {
	svc *service.Service
}

func NewVotingHandler(svc *service.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

func (h *VotingHandler) participant(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := h.svc.Participant(r.Header.Get(middleware.ParticipantTokenHeader))
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	return userID, true
}

// Join handles POST /participants
func (h *VotingHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, token, err := h.svc.NewParticipant()
	if err != nil {
		middleware.Logger(r).Error().Err(err).Msg("failed to issue participant token")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join")
		return
	}

	middleware.Logger(r).Info().Str("user_id", userID).Msg("participant joined")

	middleware.JSONResponse(w, http.StatusCreated, models.ParticipantResponse{
		UserID: userID,
		Token:  token,
	})
}

// CastVote handles POST /polls/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.participant(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.QuestionID == "" || req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id and option_id are required")
		return
	}

	resp, err := h.svc.CastVote(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if resp.Status == service.VoteAlreadyVoted {
		status = http.StatusOK
	}
	middleware.JSONResponse(w, status, resp)
}

// Me handles GET /polls/{id}/me
func (h *VotingHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.participant(w, r)
	if !ok {
		return
	}

	view, err := h.svc.ParticipantView(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}
