// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package feedclient keeps a client's copy of a poll in sync with the server.

	src := feedclient.NewHTTPSource("https://live.example.com", pollID, header)
	c := feedclient.New(src, func(agg *models.PollAggregate) {
		render(agg)
	})
	err := c.Run(ctx) // ErrConnectionLost once retries are exhausted

Rules the client follows:

  - every (re)connect is followed by one unconditional refetch
  - notifications are never applied; bursts within Debounce collapse into a
    single refetch
  - refetches run one at a time and each snapshot replaces the previous one
  - reconnects back off exponentially; after DefaultMaxRetries consecutive
    failures the client reports StatusConnectionLost and stops
*/
package feedclient
