// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/models"
)

// Forwarder receives every locally published notification, e.g. to relay it
// to other instances.
type Forwarder interface {
	Forward(n models.Notification)
}

type subscriber struct {
	ch chan models.Notification
}

// Broker fans notifications out to in-process subscribers of a poll.
// A slow subscriber never blocks a publisher: each subscription buffers at
// most one pending notification and newer ones replace it.
type Broker struct {
	origin string
	seq    atomic.Uint64

	mu        sync.RWMutex
	subs      map[string]map[*subscriber]struct{}
	forwarder Forwarder
}

// NewBroker creates a broker with a fresh instance id.
func NewBroker() *Broker {
	return &Broker{
		origin: uuid.NewString(),
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Origin identifies this broker's notifications on a shared relay.
func (b *Broker) Origin() string { return b.origin }

// SetForwarder registers f to receive every locally published notification.
func (b *Broker) SetForwarder(f Forwarder) {
	b.mu.Lock()
	b.forwarder = f
	b.mu.Unlock()
}

// Subscribe returns a channel of notifications for pollID. The channel is
// closed once ctx is done.
func (b *Broker) Subscribe(ctx context.Context, pollID string) <-chan models.Notification {
	sub := &subscriber{ch: make(chan models.Notification, 1)}

	b.mu.Lock()
	if b.subs[pollID] == nil {
		b.subs[pollID] = make(map[*subscriber]struct{})
	}
	b.subs[pollID][sub] = struct{}{}
	b.mu.Unlock()
	metrics.FeedSubscribers.Add(1)

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[pollID], sub)
		if len(b.subs[pollID]) == 0 {
			delete(b.subs, pollID)
		}
		close(sub.ch)
		b.mu.Unlock()
		metrics.FeedSubscribers.Add(-1)
	}()

	return sub.ch
}

// Subscribers returns the number of open subscriptions for pollID.
func (b *Broker) Subscribers(pollID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[pollID])
}

// Publish stamps n, delivers it locally and hands it to the forwarder.
func (b *Broker) Publish(n models.Notification) models.Notification {
	n.Seq = b.seq.Add(1)
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	n.Origin = b.origin
	metrics.NotificationsPublished.Add(1)

	b.Deliver(n)

	b.mu.RLock()
	f := b.forwarder
	b.mu.RUnlock()
	if f != nil {
		f.Forward(n)
	}
	return n
}

// Deliver hands n to local subscribers only.
func (b *Broker) Deliver(n models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[n.PollID] {
		select {
		case sub.ch <- n:
		default:
			// replace the pending notification with the newer one
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- n:
			default:
			}
		}
	}
}
