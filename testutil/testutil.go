// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

// Fixture identifiers used by PollFixture.
const (
	PollID  = "poll-1"
	GroupID = "group-1"
	Slug    = "friday-quiz"
)

// TestDBURLEnv names the env variable that enables PostgreSQL-backed tests.
const TestDBURLEnv = "TEST_DATABASE_URL"

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseType:    "memory",
		ControllerSalt:  "test-controller-salt",
		ParticipantSalt: "test-participant-salt",
		BaseURL:         "https://live.example.com",
		Scoring:         "correct",
		LogLevel:        "disabled",
	}
}

// NewSQLiteStore opens a private in-memory SQLite database with the full schema.
func NewSQLiteStore(t *testing.T) *store.SQLStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	st, err := store.Open(context.Background(), db.SQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// NewPostgresStore opens the database named by TEST_DATABASE_URL after
// dropping every table, or skips the test when the variable is unset.
func NewPostgresStore(t *testing.T) *store.SQLStore {
	t.Helper()

	url := os.Getenv(TestDBURLEnv)
	if url == "" {
		t.Skip(TestDBURLEnv + " not set")
	}

	st, err := store.Open(context.Background(), db.Postgres, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.DropSchema(st.DB()); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(st.DB(), db.Postgres); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// ForEachStore runs fn once per store implementation.
func ForEachStore(t *testing.T, fn func(t *testing.T, st store.Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, store.NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, NewSQLiteStore(t)) })
	t.Run("postgres", func(t *testing.T) { fn(t, NewPostgresStore(t)) })
}

// PollFixture builds a poll with n questions "q1".."qN", each with options
// "<q>-a", "<q>-b", "<q>-c". For quizzes option a is the correct one.
func PollFixture(pollType models.PollType, status models.PollStatus, n int) models.PollAggregate {
	created := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	agg := models.PollAggregate{
		Poll: models.Poll{
			ID:          PollID,
			GroupID:     GroupID,
			Slug:        Slug,
			Title:       "Friday Quiz",
			Description: "Weekly group quiz",
			Type:        pollType,
			Status:      status,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
	}

	for i := 0; i < n; i++ {
		qid := fmt.Sprintf("q%d", i+1)
		q := models.Question{
			ID:           qid,
			OrderIndex:   i,
			QuestionText: fmt.Sprintf("Question %d?", i+1),
		}
		for j, suffix := range []string{"a", "b", "c"} {
			o := models.Option{
				ID:         qid + "-" + suffix,
				OptionText: fmt.Sprintf("Answer %s", suffix),
				OrderIndex: j,
			}
			if pollType == models.TypeQuiz {
				correct := suffix == "a"
				o.IsCorrect = &correct
			}
			q.Options = append(q.Options, o)
		}
		agg.Questions = append(agg.Questions, q)
	}
	return agg
}

// ImportPoll writes a fixture into st.
func ImportPoll(t *testing.T, st store.Store, agg models.PollAggregate) {
	t.Helper()
	if err := st.Import(context.Background(), agg); err != nil {
		t.Fatalf("Failed to import test poll: %v", err)
	}
}

// ControllerHeaders returns headers authorizing the controller of GroupID.
func ControllerHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{"X-Controller-Key": auth.ControllerKey(GroupID, cfg.ControllerSalt)}
}

// ParticipantHeaders returns headers identifying userID.
func ParticipantHeaders(cfg cliparse.Config, userID string) map[string]string {
	return map[string]string{"X-Participant-Token": auth.SignParticipant(userID, cfg.ParticipantSalt)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
