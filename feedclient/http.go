// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feedclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/livepoll/models"
)

// ReadTimeout drops a feed connection that has been silent, pings included,
// for this long.
const ReadTimeout = 75 * time.Second

// HTTPSource reads a poll from a livepoll server: the aggregate over HTTP and
// notifications over the WebSocket feed.
type HTTPSource struct {
	BaseURL string
	PollID  string
	// Header is sent with every request, e.g. X-Controller-Key.
	Header http.Header

	HTTPClient *http.Client
	Dialer     *websocket.Dialer

	fetches singleflight.Group
}

// NewHTTPSource creates a source for pollID on the server at baseURL.
func NewHTTPSource(baseURL, pollID string, header http.Header) *HTTPSource {
	return &HTTPSource{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		PollID:     pollID,
		Header:     header,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Dialer:     websocket.DefaultDialer,
	}
}

// Fetch GETs the aggregate. Concurrent calls share one request.
func (s *HTTPSource) Fetch(ctx context.Context) (*models.PollAggregate, error) {
	v, err, _ := s.fetches.Do(s.PollID, func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PollAggregate), nil
}

func (s *HTTPSource) fetch(ctx context.Context) (*models.PollAggregate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/polls/"+url.PathEscape(s.PollID), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range s.Header {
		req.Header[k] = vs
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch poll")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&e)
		return nil, errors.Errorf("fetch poll: %s: %s", resp.Status, e.Message)
	}

	var agg models.PollAggregate
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return nil, errors.Wrap(err, "decode poll")
	}
	return &agg, nil
}

// Connect dials the feed endpoint.
func (s *HTTPSource) Connect(ctx context.Context) (Stream, error) {
	u, err := url.Parse(s.BaseURL + "/polls/" + url.PathEscape(s.PollID) + "/feed")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, resp, err := s.Dialer.DialContext(ctx, u.String(), s.Header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial feed: %s", resp.Status)
		}
		return nil, errors.Wrap(err, "dial feed")
	}

	conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(ReadTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	return &wsStream{conn: conn}, nil
}

type wsStream struct {
	conn *websocket.Conn
}

func (s *wsStream) Next() (models.Notification, error) {
	var n models.Notification
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return n, err
	}
	s.conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	if err := json.Unmarshal(data, &n); err != nil {
		return n, errors.Wrap(err, "decode notification")
	}
	return n, nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
