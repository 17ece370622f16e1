// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/service"
)

// Feed timing.
const (
	DefaultPingInterval = 25 * time.Second
	writeWait           = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS already admits any origin; the feed carries no data beyond poll ids.
	CheckOrigin: func(*http.Request) bool { return true },
}

// FeedHandler streams change notifications over a WebSocket.
type FeedHandler struct {
	svc          *service.Service
	PingInterval time.Duration
}

func NewFeedHandler(svc *service.Service) *FeedHandler {
	return &FeedHandler{svc: svc, PingInterval: DefaultPingInterval}
}

// Stream handles GET /polls/{id}/feed
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	logger := middleware.Logger(r)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// subscribe before upgrading so nothing published after the client's
	// first refetch can be missed
	notes, err := h.svc.Subscribe(ctx, pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Str("poll_id", pollID).Msg("feed upgrade failed")
		return
	}
	defer conn.Close()

	logger.Debug().Str("poll_id", pollID).Msg("feed opened")

	// the read side only exists to process control frames and notice closes
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-notes:
			if !ok {
				logger.Debug().Str("poll_id", pollID).Msg("feed closed")
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				logger.Error().Err(err).Msg("failed to encode notification")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug().Err(err).Str("poll_id", pollID).Msg("feed write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug().Err(err).Str("poll_id", pollID).Msg("feed ping failed")
				return
			}
		}
	}
}
