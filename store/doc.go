// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls and serializes every change to them.

# Implementations

  - MemoryStore: process-local maps behind one RWMutex, used for demos and tests
  - SQLStore: PostgreSQL or SQLite through database/sql

Both run control commands the same way: load the poll's LiveState under a
lock, apply a livepoll.Command to a copy, and write back only if the command
succeeded.

	st, err := store.Open(ctx, db.Postgres, os.Getenv("DATABASE_URL"))
	state, err := st.Transition(ctx, pollID, livepoll.Advance(true), time.Now())

# Locking

PostgreSQL transitions take SELECT ... FOR UPDATE on the poll row; vote inserts
take FOR SHARE so a reveal cannot slip between the liveness check and the
insert. SQLite is limited to a single open connection, which gives the same
ordering.

# Votes

InsertVote checks, in order: an existing vote (ErrAlreadyVoted), that the
option belongs to the question (ErrNotFound), and that the question is live
and unrevealed (ErrQuestionNotLive). A unique-constraint violation from a
concurrent insert is reported as ErrAlreadyVoted.
*/
package store
