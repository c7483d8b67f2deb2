package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Client wraps a NATS connection for best-effort domain event publishing
// and queue-group consumption
type Client struct {
	conn       *nats.Conn
	subs       map[string]*nats.Subscription
	mu         sync.RWMutex
	reconnects int
	connected  bool
}

// Config holds NATS configuration
type Config struct {
	URL            string
	Name           string
	ReconnectWait  time.Duration
	MaxReconnects  int
	ConnectTimeout time.Duration
}

// NewClient creates a new NATS client
func NewClient(cfg Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	client := &Client{
		conn:      conn,
		subs:      make(map[string]*nats.Subscription),
		connected: true,
	}

	conn.SetReconnectHandler(func(nc *nats.Conn) {
		client.reconnects++
		client.connected = true
	})

	conn.SetDisconnectErrHandler(func(nc *nats.Conn, err error) {
		client.connected = false
	})

	return client, nil
}

// Publish publishes a message to a subject
func (c *Client) Publish(ctx context.Context, subject string, data interface{}) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	return c.conn.Publish(subject, payload)
}

// QueueSubscribe subscribes to a subject within a queue group so only one
// replica handles each event. One subscription per subject.
func (c *Client) QueueSubscribe(subject, queue string, handler func(msg *nats.Msg)) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.subs[subject]; exists {
		return fmt.Errorf("already subscribed to %s", subject)
	}

	sub, err := c.conn.QueueSubscribe(subject, queue, handler)
	if err != nil {
		return fmt.Errorf("failed to queue subscribe: %w", err)
	}

	c.subs[subject] = sub
	return nil
}

// Unsubscribe removes a subscription
func (c *Client) Unsubscribe(subject string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, exists := c.subs[subject]
	if !exists {
		return fmt.Errorf("not subscribed to %s", subject)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	delete(c.subs, subject)
	return nil
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	return c != nil && c.connected && c.conn != nil && c.conn.IsConnected()
}

// Close closes the client
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		sub.Unsubscribe()
		delete(c.subs, subject)
	}

	if c.conn != nil {
		c.conn.Close()
	}

	c.connected = false
	return nil
}

// Drain flushes in-flight messages before shutdown
func (c *Client) Drain() error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.Drain()
}

// Reconnects returns number of reconnections
func (c *Client) Reconnects() int {
	if c == nil {
		return 0
	}
	return c.reconnects
}
