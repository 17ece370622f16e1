// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter returns a chi router with every endpoint:

	handler := router.NewRouter(svc)

Every route runs behind chi's RequestID and Recoverer plus CORS. API routes
also get request logging.

# Endpoints

Health and metrics:

	GET /health
	GET /debug/vars - expvar counters

Identity and lookup:

	POST /participants                 - Issue an anonymous participant token
	GET  /groups/{group}/polls/{slug}  - Resolve a slug to a poll id

Session control (requires X-Controller-Key):

	POST /polls/{id}/start
	POST /polls/{id}/advance  {auto_reveal, if_version (required)}
	POST /polls/{id}/reveal   {question_id, if_version}
	POST /polls/{id}/jump     {question_id, if_version}
	POST /polls/{id}/end      {if_version}
	POST /polls/{id}/status   {status, if_version}

Participants (requires X-Participant-Token):

	POST /polls/{id}/votes    {question_id, option_id}
	GET  /polls/{id}/me       - Participant view

Reads:

	GET /polls/{id}                       - Poll aggregate
	GET /polls/{id}/feed                  - WebSocket change feed
	GET /polls/{id}/questions/{qid}/tally - Vote counts
	GET /polls/{id}/leaderboard           - Quiz ranking
	GET /polls/{id}/display               - Projector view
	GET /polls/{id}/display/qr.png        - Join QR code
*/
package router
