// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package feed is the change feed: per-poll cache-invalidation notifications.

A notification carries only the poll id, a kind (poll, question or vote) and a
sequence number. Consumers never apply it; they re-fetch the aggregate.

# Broker

	b := feed.NewBroker()
	ch := b.Subscribe(ctx, pollID)   // closed when ctx is done
	b.Publish(models.Notification{PollID: pollID, Kind: models.KindVote})

Each subscription buffers one notification. Bursts coalesce into the newest
one, so a slow display costs nothing but a late refetch.

# Redis relay

With several server instances behind a load balancer, RedisRelay republishes
local notifications on Redis (msgpack payloads on livepoll:feed:<poll id>)
and delivers the other instances' notifications to local subscribers:

	client, err := feed.NewRedisClient(cfg.RedisURL)
	relay := feed.NewRedisRelay(client, b)
	go relay.Run(ctx)
*/
package feed
