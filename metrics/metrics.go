// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"expvar"
	"time"
)

var (
	// VotesRecorded counts accepted votes
	VotesRecorded = expvar.NewInt("votes_recorded")

	// VotesRejected counts refused votes by reason
	VotesRejected = expvar.NewMap("votes_rejected")

	// TransitionsApplied counts control commands that changed state, by action
	TransitionsApplied = expvar.NewMap("transitions_applied")

	// TransitionsStale counts control commands that were no-ops, by action
	TransitionsStale = expvar.NewMap("transitions_stale")

	// FeedSubscribers is the number of open change-feed subscriptions
	FeedSubscribers = expvar.NewInt("feed_subscribers")

	// NotificationsPublished counts notifications handed to the feed
	NotificationsPublished = expvar.NewInt("notifications_published")

	// NotificationsRelayed counts notifications received from other instances
	NotificationsRelayed = expvar.NewInt("notifications_relayed")

	// Uptime stores the unix timestamp of the process start
	Uptime = expvar.NewInt("uptime")
)

// Init records the start time.
func Init() {
	Uptime.Set(time.Now().Unix())
}
