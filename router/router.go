// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielhkuo/livepoll/handlers"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/service"
)

func NewRouter(svc *service.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	// Initialize handlers
	controlHandler := handlers.NewControlHandler(svc)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)
	displayHandler := handlers.NewDisplayHandler(svc)
	feedHandler := handlers.NewFeedHandler(svc)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithLogging)

		r.Post("/participants", votingHandler.Join)
		r.Get("/groups/{group}/polls/{slug}", resultsHandler.ResolveSlug)

		r.Route("/polls/{id}", func(r chi.Router) {
			r.Get("/", resultsHandler.GetPoll)
			r.Get("/feed", feedHandler.Stream)

			// Session control (requires X-Controller-Key)
			r.Post("/start", controlHandler.Start)
			r.Post("/advance", controlHandler.Advance)
			r.Post("/reveal", controlHandler.Reveal)
			r.Post("/jump", controlHandler.Jump)
			r.Post("/end", controlHandler.End)
			r.Post("/status", controlHandler.SetStatus)

			// Participants (requires X-Participant-Token)
			r.Post("/votes", votingHandler.CastVote)
			r.Get("/me", votingHandler.Me)

			// Results and projector
			r.Get("/questions/{qid}/tally", resultsHandler.GetTally)
			r.Get("/leaderboard", resultsHandler.GetLeaderboard)
			r.Get("/display", displayHandler.Get)
			r.Get("/display/qr.png", displayHandler.QR)
		})
	})

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	return r
}
