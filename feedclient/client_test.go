// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feedclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/livepoll/models"
)

var errDropped = errors.New("dropped")

type fakeStream struct {
	notes  chan models.Notification
	closed chan struct{}
	once   sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{notes: make(chan models.Notification, 64), closed: make(chan struct{})}
}

func (s *fakeStream) Next() (models.Notification, error) {
	select {
	case n := <-s.notes:
		return n, nil
	case <-s.closed:
		return models.Notification{}, errDropped
	}
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeSource struct {
	mu       sync.Mutex
	streams  chan *fakeStream
	failures int // remaining Connect calls that fail
	fetches  atomic.Int32
	version  atomic.Int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{streams: make(chan *fakeStream, 8)}
}

func (s *fakeSource) Fetch(ctx context.Context) (*models.PollAggregate, error) {
	s.fetches.Add(1)
	return &models.PollAggregate{Poll: models.Poll{ID: "p1", StateVersion: s.version.Load()}}, nil
}

func (s *fakeSource) Connect(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	if s.failures != 0 {
		if s.failures > 0 {
			s.failures--
		}
		s.mu.Unlock()
		return nil, errors.New("refused")
	}
	s.mu.Unlock()

	st := newFakeStream()
	s.streams <- st
	return st, nil
}

func (s *fakeSource) nextStream(t *testing.T) *fakeStream {
	t.Helper()
	select {
	case st := <-s.streams:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
	}
	return nil
}

func fastBackOff(retries uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), retries)
	}
}

type snapshots struct {
	mu   sync.Mutex
	list []*models.PollAggregate
}

func (s *snapshots) add(agg *models.PollAggregate) {
	s.mu.Lock()
	s.list = append(s.list, agg)
	s.mu.Unlock()
}

func (s *snapshots) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

func (s *snapshots) last() *models.PollAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list[len(s.list)-1]
}

func start(t *testing.T, src *fakeSource, retries uint64, configure ...func(*Client)) (*snapshots, context.CancelFunc, <-chan error) {
	t.Helper()
	snaps := &snapshots{}
	c := New(src, snaps.add)
	c.Debounce = 20 * time.Millisecond
	c.NewBackOff = fastBackOff(retries)
	for _, fn := range configure {
		fn(c)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	return snaps, cancel, errc
}

func TestClient_FetchesOnConnect(t *testing.T) {
	src := newFakeSource()
	snaps, cancel, errc := start(t, src, 3)
	defer cancel()

	src.nextStream(t)
	assert.Eventually(t, func() bool { return snaps.len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestClient_DebouncesBursts(t *testing.T) {
	src := newFakeSource()
	snaps, cancel, _ := start(t, src, 3)
	defer cancel()

	st := src.nextStream(t)
	require.Eventually(t, func() bool { return snaps.len() == 1 }, time.Second, 5*time.Millisecond)

	src.version.Store(7)
	for i := 0; i < 20; i++ {
		st.notes <- models.Notification{PollID: "p1", Kind: models.KindVote}
	}

	require.Eventually(t, func() bool { return snaps.len() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, snaps.len(), "burst coalesced into one refetch")
	assert.Equal(t, int64(7), snaps.last().StateVersion, "snapshot replaced wholesale")
}

func TestClient_RefetchesAfterReconnect(t *testing.T) {
	src := newFakeSource()
	var mu sync.Mutex
	var statuses []Status
	snaps, cancel, _ := start(t, src, 3, func(c *Client) {
		c.OnStatus = func(s Status) {
			mu.Lock()
			statuses = append(statuses, s)
			mu.Unlock()
		}
	})
	defer cancel()

	first := src.nextStream(t)
	require.Eventually(t, func() bool { return snaps.len() >= 1 }, time.Second, 5*time.Millisecond)
	before := snaps.len()

	// drop without any notification: the client must still refetch
	first.Close()
	src.nextStream(t)
	assert.Eventually(t, func() bool { return snaps.len() == before+1 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Contains(t, statuses, StatusReconnecting)
	mu.Unlock()
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	src := newFakeSource()
	src.failures = -1 // always fail

	var lost atomic.Bool
	snaps := &snapshots{}
	c := New(src, snaps.add)
	c.NewBackOff = fastBackOff(3)
	c.OnStatus = func(s Status) {
		if s == StatusConnectionLost {
			lost.Store(true)
		}
	}

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrConnectionLost)
	assert.True(t, lost.Load())
	assert.Zero(t, snaps.len())
}

func TestClient_RetriesResetAfterSuccess(t *testing.T) {
	src := newFakeSource()
	src.failures = 2
	snaps, cancel, errc := start(t, src, 3)
	defer cancel()

	// two failures fit in the retry budget
	st := src.nextStream(t)
	require.Eventually(t, func() bool { return snaps.len() == 1 }, time.Second, 5*time.Millisecond)

	src.mu.Lock()
	src.failures = 2
	src.mu.Unlock()
	st.Close()

	src.nextStream(t)
	select {
	case err := <-errc:
		t.Fatalf("client stopped: %v", err)
	default:
	}
}
