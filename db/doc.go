// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for PostgreSQL and SQLite.

# Schema Creation

CreateSchema initializes all required tables for a dialect:

	if err := db.CreateSchema(conn, db.Postgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: metadata, status, active_question_id, state_version
  - poll_question: ordered questions with is_revealed and activated_at
  - poll_option: answers, optional is_correct
  - poll_vote: one row per (question_id, user_id)

# Relationships

	poll 1──* poll_question 1──* poll_option
	poll 1──* poll_vote *──1 poll_option

All foreign keys use ON DELETE CASCADE.

# Constraints

  - poll (group_id, slug) unique: slug resolution
  - poll_question (poll_id, order_index) unique: defines the sequence
  - poll_vote (question_id, user_id) unique: one vote per participant

There is no is_live_active column. The live question is
poll.active_question_id, so a poll cannot have two.
*/
package db
