// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/service"
)

// QRSize is the edge length in pixels of the join QR code.
const QRSize = 256

type DisplayHandler struct {
	svc *service.Service
}

func NewDisplayHandler(svc *service.Service) *DisplayHandler {
	return &DisplayHandler{svc: svc}
}

// Get handles GET /polls/{id}/display
func (h *DisplayHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.DisplayView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// QR handles GET /polls/{id}/display/qr.png
func (h *DisplayHandler) QR(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.DisplayView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	png, err := qrcode.Encode(view.URL, qrcode.Medium, QRSize)
	if err != nil {
		middleware.Logger(r).Error().Err(err).Str("url", view.URL).Msg("failed to render join QR code")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
