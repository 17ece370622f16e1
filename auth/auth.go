// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidControllerKey = errors.New("invalid controller key")
	ErrInvalidToken         = errors.New("invalid token format")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func sign(value, salt string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	return h.Sum(nil)
}

func encode(b []byte) string {
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "=")
}

// ControllerKey derives the key that authorizes control of every poll in a group.
// It is deterministic, so nothing is stored.
func ControllerKey(groupID, salt string) string {
	return encode(sign("controller:"+groupID, salt))
}

// ValidateControllerKey checks key against the group's controller key
func ValidateControllerKey(groupID, key, salt string) error {
	expected := ControllerKey(groupID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidControllerKey
	}
	return nil
}

// SignParticipant returns a bearer token carrying userID.
// Format: base64url(userID) "." base64url(HMAC(userID)).
func SignParticipant(userID, salt string) string {
	return encode([]byte(userID)) + "." + encode(sign("participant:"+userID, salt))
}

// VerifyParticipant returns the user id carried by a token from SignParticipant.
func VerifyParticipant(token, salt string) (string, error) {
	idPart, macPart, ok := strings.Cut(token, ".")
	if !ok || idPart == "" || macPart == "" {
		return "", ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(idPart)
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidToken
	}
	userID := string(raw)
	if !hmac.Equal([]byte(macPart), []byte(encode(sign("participant:"+userID, salt)))) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// NewParticipant issues a fresh anonymous user id and its token.
func NewParticipant(salt string) (userID, token string, err error) {
	userID, err = GenerateID(12)
	if err != nil {
		return "", "", err
	}
	return userID, SignParticipant(userID, salt), nil
}

// JoinCode creates a short code participants can type to find a poll.
// Uses HMAC for determinism and base62 encoding for readability
func JoinCode(pollID, salt string) string {
	sum := sign("join:"+pollID, salt)

	// 5 bytes keep the code at most 7 characters
	return base62Encode(sum[:5])
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	// Reverse the string
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
