// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first if it exists. It never
overrides variables that are already set.

# CLI Flags

	-p                 Server port (default 3318)
	-d                 Database URL
	-t                 Database type: sqlite (default), postgres, memory
	--controller-salt  Controller key salt
	--participant-salt Participant token salt
	--base-url         Public base URL for join links
	--redis-url        Redis URL; enables cross-instance notifications
	--scoring          Quiz scoring: correct (default) or speed
	--log-level        debug, info (default), warn, error, disabled
	--log-file         Rotating JSON log file
	--seed             JSON file of polls imported at startup

# Environment Variables

Flags fall back to environment variables:

	PORT                   → -p
	DATABASE_URL           → -d
	DATABASE_TYPE          → -t
	CONTROLLER_KEY_SALT    → --controller-salt
	PARTICIPANT_TOKEN_SALT → --participant-salt
	PUBLIC_BASE_URL        → --base-url
	REDIS_URL              → --redis-url
	QUIZ_SCORING           → --scoring
	LOG_LEVEL              → --log-level
	LOG_FILE               → --log-file

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing and the database type is not memory
  - CONTROLLER_KEY_SALT or PARTICIPANT_TOKEN_SALT is missing
  - the database type or scoring mode is unknown
*/
package cliparse
