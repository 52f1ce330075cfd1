package feed

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

// client wraps a feed connection. Each text message is one JSON request or
// one JSON response.
type client struct {
	conn *websocket.Conn
}

func newClient(conn *websocket.Conn, maxMessageSize int64) *client {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	return &client{conn: conn}
}

// readRequest blocks until the next request arrives. A malformed request is
// returned as a *badRequestError so the caller can answer it and keep reading.
func (c *client) readRequest() (Request, error) {
	var req Request
	_, message, err := c.conn.ReadMessage()
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(message, &req); err != nil {
		return req, &badRequestError{err: err}
	}
	return req, nil
}

func (c *client) writeResponse(resp Response) error {
	return c.conn.WriteJSON(resp)
}

func (c *client) close() error {
	return c.conn.Close()
}

func (c *client) remoteAddr() string {
	return c.conn.RemoteAddr().String()
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return fmt.Sprintf("bad request: %v", e.err)
}

func (e *badRequestError) Unwrap() error {
	return e.err
}
