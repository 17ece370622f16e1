// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
)

// Error codes returned in ErrorResponse.Error for conditions clients act on.
const (
	CodeQuestionNotLive = "question_not_live"
)

// writeError maps a service error to its HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, livepoll.ErrQuestionNotLive):
		middleware.JSONResponse(w, http.StatusConflict, models.ErrorResponse{
			Error:   CodeQuestionNotLive,
			Message: err.Error(),
		})
	case errors.Is(err, livepoll.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, livepoll.ErrUnauthorized):
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, livepoll.ErrInvalidTransition):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, livepoll.ErrNotQuiz):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		middleware.Logger(r).Error().Err(err).Msg("request failed")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// parseOptionalBody decodes a JSON body if one was sent. Control commands
// without preconditions may be posted with no body at all.
func parseOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := middleware.ParseJSONBody(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
