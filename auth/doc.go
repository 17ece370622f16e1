// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the HMAC credentials used at the HTTP boundary.

# Controller Keys

A controller key authorizes every control command for the polls of one group:

	key := auth.ControllerKey(groupID, salt)
	err := auth.ValidateControllerKey(groupID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same group ID and salt always produce the same key, so nothing is stored.
Handlers read it from the X-Controller-Key header.

# Participant Tokens

Participant tokens carry a user id and its signature:

	token := auth.SignParticipant(userID, salt)
	userID, err := auth.VerifyParticipant(token, salt)

Handlers read them from X-Participant-Token. NewParticipant issues an
anonymous user id plus token for devices that have no identity yet.

# Join Codes

Join codes are short base62 strings shown on the projector next to the QR
code:

	code := auth.JoinCode(pollID, salt)

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
