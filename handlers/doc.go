// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the livepoll API.

# Handler Types

Each handler is a struct over the service:

  - ControlHandler: session commands (start, advance, reveal, jump, end, status)
  - VotingHandler: participant identity, votes and the participant view
  - ResultsHandler: poll aggregate, slug lookup, tallies and leaderboards
  - DisplayHandler: projector view and join QR code
  - FeedHandler: WebSocket change feed

Handlers are created via constructor functions that accept the service:

	controlHandler := handlers.NewControlHandler(svc)

Path parameters are read with chi.URLParam, so handlers must be mounted on a
chi router (see package router).

# Session Control

Control commands require the X-Controller-Key header. Every command answers
200 with a TransitionResult. A command that lost a race or no longer applies
is reported with applied=false and a reason; it is never an error. Sending
if_version makes a command apply only to the state the controller last saw.
Advance requires it and answers 400 without it:

	POST /polls/{id}/advance {"if_version": 3}

# Voting

Votes require the X-Participant-Token header. POST /participants issues one.

	201 {"status":"recorded","vote_id":"..."}
	200 {"status":"already_voted"}
	409 {"error":"question_not_live"}

# Errors

Service errors map to status codes in one place:

	not found           → 404
	unauthorized        → 401
	invalid transition  → 409
	question not live   → 409
	not a quiz          → 400
	anything else       → 500

# Change Feed

GET /polls/{id}/feed upgrades to a WebSocket and writes each notification as
a JSON text frame. The server pings every 25 seconds. Notifications are
invalidations: clients refetch the aggregate they care about.
*/
package handlers
