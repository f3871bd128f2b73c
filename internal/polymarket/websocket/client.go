// Package websocket maintains the market data subscription feed from Polymarket.
//
// The client owns the current subscription set: it is the single source of
// truth for what should be subscribed, and is replayed in full after every
// reconnect.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pei01/updown-collector/internal/metrics"
	"github.com/Pei01/updown-collector/pkg/hashset"
)

const (
	HandshakeTimeout      = 30 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	PingInterval          = 30 * time.Second
	DefaultReconnectDelay = 5 * time.Second
)

var ErrNotConnected = errors.New("websocket not connected")

type subscriptionFrame struct {
	AssetsIDs []string `json:"assets_ids"`
	Operation string   `json:"operation"`
}

type pingFrame struct {
	Type string `json:"type"`
}

type Client struct {
	url string
	log *slog.Logger

	// mu serializes every outbound frame so subscribe, unsubscribe and
	// heartbeat writes can't interleave.
	mu   sync.Mutex
	conn *websocket.Conn

	subMu sync.Mutex
	subs  hashset.Set[string]

	running        atomic.Bool
	reconnectDelay time.Duration
}

func New(url string, log *slog.Logger) *Client {
	return &Client{
		url:            url,
		log:            log.With("component", "websocket"),
		subs:           hashset.NewSet[string](),
		reconnectDelay: DefaultReconnectDelay,
	}
}

// Start runs the connect/read/reconnect loop until Stop is called or ctx is
// cancelled. Each inbound message is dispatched to onMessage in its own
// goroutine so a slow handler can't stall the receive loop.
func (c *Client) Start(ctx context.Context, onMessage func([]byte)) {
	c.running.Store(true)

	for c.running.Load() && ctx.Err() == nil {
		if err := c.runConnection(ctx, onMessage); err != nil {
			c.log.Warn("connection lost", "error", err)
		}

		if !c.running.Load() || ctx.Err() != nil {
			break
		}

		metrics.FeedReconnects.Inc()
		c.log.Info("reconnecting", "delay", c.reconnectDelay)
		select {
		case <-ctx.Done():
		case <-time.After(c.reconnectDelay):
		}
	}

	c.log.Info("feed stopped")
}

func (c *Client) runConnection(ctx context.Context, onMessage func([]byte)) error {
	dialer := websocket.Dialer{HandshakeTimeout: HandshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, c.url, http.Header{})
	if err != nil {
		return fmt.Errorf("couldn't dial %s: %w", c.url, err)
	}
	c.log.Info("connected", "url", c.url, "status", resp.Status)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	// Replay the full subscription set before reading anything, otherwise a
	// transient drop would silently lose the active market.
	if ids := c.Subscriptions(); len(ids) > 0 {
		c.log.Info("replaying subscriptions", "count", len(ids))
		if err := c.sendJSON(subscriptionFrame{AssetsIDs: ids, Operation: "subscribe"}); err != nil {
			return fmt.Errorf("couldn't replay subscriptions: %w", err)
		}
	}

	pingDone := make(chan struct{})
	go c.keepAlive(pingDone)
	defer close(pingDone)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("couldn't read message: %w", err)
		}
		go onMessage(msg)
	}
}

func (c *Client) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.sendJSON(pingFrame{Type: "ping"}); err != nil {
				c.log.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

// Subscribe merges ids into the subscription set and sends a subscribe frame.
// A send failure leaves the set updated; the next reconnect reconciles it.
func (c *Client) Subscribe(ids []string) error {
	c.subMu.Lock()
	c.subs.AddAll(ids)
	c.subMu.Unlock()

	if err := c.sendJSON(subscriptionFrame{AssetsIDs: ids, Operation: "subscribe"}); err != nil {
		return fmt.Errorf("couldn't send subscribe: %w", err)
	}
	c.log.Debug("subscribed", "count", len(ids))
	return nil
}

// Unsubscribe sends an unsubscribe frame and removes ids from the
// subscription set regardless of connection state.
func (c *Client) Unsubscribe(ids []string) error {
	sendErr := c.sendJSON(subscriptionFrame{AssetsIDs: ids, Operation: "unsubscribe"})

	c.subMu.Lock()
	c.subs.RemoveAll(ids)
	c.subMu.Unlock()

	if sendErr != nil {
		return fmt.Errorf("couldn't send unsubscribe: %w", sendErr)
	}
	c.log.Debug("unsubscribed", "count", len(ids))
	return nil
}

// Subscriptions returns the current subscription set.
func (c *Client) Subscriptions() []string {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return c.subs.AsSlice()
}

// Stop ends the reconnect loop and closes the live connection to unblock the
// reader.
func (c *Client) Stop() {
	c.running.Store(false)

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
}

func (c *Client) sendJSON(payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
	return c.conn.WriteJSON(payload)
}
