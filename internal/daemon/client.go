// Package daemon implements the connection manager for the panel's link to
// the node daemon: a reconnecting websocket client that dispatches inbound
// events by kind and notifies listeners on every (re)connect.
package daemon

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"srvpanel/internal/utils"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Envelope is the JSON frame exchanged with the node daemon. The first args
// entry carries the payload for event kinds that have one.
type Envelope struct {
	Event string   `json:"event"`
	Args  []string `json:"args,omitempty"`
}

// Client maintains a websocket connection to the node daemon, redialing with
// capped backoff when it drops. Inbound frames are read by a single loop, so
// event handlers and connect listeners are always invoked serially.
type Client struct {
	url    string
	logger *utils.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	connected  bool
	nextID     int
	handlers   map[string]map[int]func(string)
	connectFns map[int]func()

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewClient prepares a client for the given websocket URL. Start must be
// called before any traffic flows.
func NewClient(url string, logger *utils.Logger) *Client {
	return &Client{
		url:        url,
		logger:     logger,
		handlers:   make(map[string]map[int]func(string)),
		connectFns: make(map[int]func()),
		stop:       make(chan struct{}),
	}
}

// Start launches the dial/read loop.
func (c *Client) Start() {
	c.wg.Add(1)
	go c.run()
}

// Close tears the connection down and waits for the loop to exit. No handler
// or connect listener fires after Close returns.
func (c *Client) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Connected reports whether a live connection is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send writes one event frame to the daemon. When disconnected the message is
// dropped; the caller owns any retry policy.
func (c *Client) Send(event string, args ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return nil
	}
	frame, err := json.Marshal(Envelope{Event: event, Args: args})
	if err != nil {
		return fmt.Errorf("encode %q frame: %w", event, err)
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// Subscribe registers a handler for one inbound event kind and returns a
// release function that removes it.
func (c *Client) Subscribe(event string, fn func(payload string)) (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]func(string))
	}
	c.handlers[event][id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

// SubscribeConnect registers a listener invoked on every transition into the
// connected state, including reconnects, and returns a release function.
func (c *Client) SubscribeConnect(fn func()) (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.connectFns[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.connectFns, id)
	}
}

func (c *Client) run() {
	defer c.wg.Done()
	backoff := initialBackoff
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			c.logf("daemon dial failed (%s): %v", c.url, err)
			select {
			case <-c.stop:
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		backoff = initialBackoff

		c.mu.Lock()
		c.conn = conn
		c.connected = true
		listeners := make([]func(), 0, len(c.connectFns))
		for _, fn := range c.connectFns {
			listeners = append(listeners, fn)
		}
		c.mu.Unlock()
		c.logf("daemon connected (%s)", c.url)
		for _, fn := range listeners {
			fn()
		}

		c.readLoop(conn)

		c.mu.Lock()
		c.connected = false
		c.conn = nil
		c.mu.Unlock()
		c.logf("daemon disconnected (%s)", c.url)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Unknown frames are dropped; the daemon link is best-effort.
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env Envelope) {
	payload := ""
	if len(env.Args) > 0 {
		payload = env.Args[0]
	}
	c.mu.Lock()
	fns := make([]func(string), 0, len(c.handlers[env.Event]))
	for _, fn := range c.handlers[env.Event] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(payload)
	}
}

func (c *Client) logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if c.logger != nil {
		c.logger.Write(msg)
		return
	}
	log.Println(msg)
}
