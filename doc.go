// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the livepoll API server.

livepoll runs live polls and quizzes in a room: a controller steps through
questions, participants vote from their phones, and a projector shows the
question, the vote count and, once revealed, the results. Quizzes end on a
leaderboard.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:livepoll.db CONTROLLER_KEY_SALT=... PARTICIPANT_TOKEN_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -seed polls.json

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string; not needed with -t memory
  - CONTROLLER_KEY_SALT (--controller-salt): Secret for controller key HMAC
  - PARTICIPANT_TOKEN_SALT (--participant-salt): Secret for participant tokens and join codes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default), postgres or memory
  - PUBLIC_BASE_URL (--base-url): Base of the join links shown on the projector
  - REDIS_URL (--redis-url): Share change notifications between instances
  - QUIZ_SCORING (--scoring): correct (default) or speed
  - LOG_LEVEL, LOG_FILE: zerolog level and optional rotating log file

# Architecture

  - livepoll: Session state machine and domain errors
  - store: Memory, SQLite and PostgreSQL persistence
  - service: Control plane, vote ingestion and derived reads
  - tally: Vote counts, quiz scoring and leaderboards
  - views: Participant and projector render state
  - feed: Change notification broker and Redis relay
  - feedclient: Resynchronizing client for the change feed
  - handlers, router, middleware: HTTP surface
  - auth: Controller keys, participant tokens, join codes
  - cliparse, logger, metrics: Configuration, logging, expvar counters
  - db: Schema creation

See package documentation for each component.
*/
package main
