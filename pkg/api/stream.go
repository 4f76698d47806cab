package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// LogStream is a live feed of cluster log lines over a websocket.
type LogStream struct {
	conn *websocket.Conn
}

// StreamLogs opens the log stream for a cluster. The caller must Close the
// stream; closing it is the interrupt teardown path for --follow.
func (c *Client) StreamLogs(ctx context.Context, clusterID string) (*LogStream, error) {
	wsURL := httpToWS(c.endpoint) + fmt.Sprintf("/api/v1/clusters/%s/logs/stream", clusterID)

	header := http.Header{}
	header.Set("User-Agent", "vantage-cli/"+Version)
	if c.token != "" {
		header.Set("Cookie", sessionCookie+"="+c.token)
	}
	if c.region != "" {
		header.Set("X-Region", c.region)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to open log stream (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to open log stream: %w", err)
	}
	return &LogStream{conn: conn}, nil
}

// Recv blocks until the next log line arrives.
func (s *LogStream) Recv() (string, error) {
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(msg), nil
}

// Ended reports whether a Recv error marks an orderly server-side close
// rather than a transport failure.
func (s *LogStream) Ended(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// Close tears down the websocket connection.
func (s *LogStream) Close() error {
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// httpToWS rewrites an http(s) base URL to its ws(s) counterpart.
func httpToWS(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}
