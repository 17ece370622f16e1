// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feedclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/livepoll/models"
)

// ErrConnectionLost is returned by Run once reconnecting has been given up.
var ErrConnectionLost = errors.New("connection lost")

// Source is where a client reads snapshots and notifications from.
type Source interface {
	// Fetch returns the current aggregate.
	Fetch(ctx context.Context) (*models.PollAggregate, error)
	// Connect opens the notification stream.
	Connect(ctx context.Context) (Stream, error)
}

// Stream yields notifications until it fails or is closed.
type Stream interface {
	Next() (models.Notification, error)
	Close() error
}

// Status is the connection state reported to OnStatus.
type Status string

const (
	StatusConnected      Status = "connected"
	StatusReconnecting   Status = "reconnecting"
	StatusConnectionLost Status = "connection_lost"
)

// Defaults
const (
	DefaultDebounce   = 150 * time.Millisecond
	DefaultMaxRetries = 8
)

// Client keeps a local snapshot of one poll in sync with the server. It never
// applies notifications; each one schedules a full refetch.
type Client struct {
	src Source

	// Debounce coalesces notifications arriving within the window into one refetch.
	Debounce time.Duration
	// NewBackOff builds the reconnect policy; nil means exponential with
	// DefaultMaxRetries attempts.
	NewBackOff func() backoff.BackOff
	// OnSnapshot receives every fetched aggregate, in order, from one goroutine.
	OnSnapshot func(*models.PollAggregate)
	// OnStatus is told about connection changes.
	OnStatus func(Status)
}

// New creates a client for src.
func New(src Source, onSnapshot func(*models.PollAggregate)) *Client {
	return &Client{src: src, Debounce: DefaultDebounce, OnSnapshot: onSnapshot}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, DefaultMaxRetries)
}

// Run connects, fetches and follows the feed until ctx is done or the
// connection cannot be re-established.
func (c *Client) Run(ctx context.Context) error {
	newBackOff := c.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	b := newBackOff()
	b.Reset()

	requests := make(chan struct{}, 1)
	done := make(chan struct{})
	defer func() { <-done }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.fetchLoop(runCtx, requests, done)

	for {
		stream, err := c.src.Connect(runCtx)
		if err == nil {
			b.Reset()
			c.status(StatusConnected)
			// a drop may have hidden any number of notifications
			request(requests)
			err = c.follow(runCtx, stream, requests)
			stream.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			c.status(StatusConnectionLost)
			return errors.Wrapf(ErrConnectionLost, "%v", err)
		}
		log.Debug().Err(err).Dur("retry_in", wait).Msg("feed disconnected")
		c.status(StatusReconnecting)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// follow reads the stream and schedules debounced refetches until the
// stream fails.
func (c *Client) follow(ctx context.Context, stream Stream, requests chan struct{}) error {
	errc := make(chan error, 1)
	notes := make(chan models.Notification)
	go func() {
		for {
			n, err := stream.Next()
			if err != nil {
				errc <- err
				return
			}
			select {
			case notes <- n:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			stream.Close()
			return ctx.Err()
		case err := <-errc:
			return err
		case <-notes:
			if fire == nil {
				timer = time.NewTimer(c.Debounce)
				fire = timer.C
			}
		case <-fire:
			fire = nil
			request(requests)
		}
	}
}

// fetchLoop performs refetches one at a time. Requests made while a fetch is
// running collapse into one follow-up fetch.
func (c *Client) fetchLoop(ctx context.Context, requests <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
		}

		agg, err := c.src.Fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("refetch failed")
			}
			continue
		}
		if c.OnSnapshot != nil {
			c.OnSnapshot(agg)
		}
	}
}

func request(requests chan<- struct{}) {
	select {
	case requests <- struct{}{}:
	default:
	}
}

func (c *Client) status(s Status) {
	if c.OnStatus != nil {
		c.OnStatus(s)
	}
}
