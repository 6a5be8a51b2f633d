package live

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"command-center-backend/config"
	"command-center-backend/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client maintains the connection to the club platform's live-update feed.
// Feed messages are republished on the bus, and each successful connect is
// itself an event so the sync service can reconcile anything missed while
// the connection was down.
type Client struct {
	cfg    *config.LiveConfig
	apiKey string
	bus    *events.Bus
}

// NewClient creates a live feed client.
func NewClient(cfg *config.LiveConfig, apiKey string, bus *events.Bus) *Client {
	return &Client{cfg: cfg, apiKey: apiKey, bus: bus}
}

// Run dials the feed and keeps redialing with exponential backoff until ctx
// is cancelled.
func (c *Client) Run(ctx context.Context) {
	if !c.cfg.Enabled || c.cfg.URL == "" {
		log.Println("Live feed is disabled. Not starting.")
		return
	}
	log.Println("Starting live feed client...")

	backoff := c.cfg.ReconnectMin
	for {
		connected, err := c.listen(ctx)
		if ctx.Err() != nil {
			log.Println("Live feed client shutting down.")
			return
		}
		if err != nil {
			log.Printf("Live feed connection lost: %v", err)
		}
		if connected {
			backoff = c.cfg.ReconnectMin
		}

		select {
		case <-ctx.Done():
			log.Println("Live feed client shutting down.")
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.cfg.ReconnectMax {
			backoff = c.cfg.ReconnectMax
		}
	}
}

// listen dials the feed and consumes messages until the connection drops.
// It reports whether a connection was established at all, so Run only
// resets the backoff after real progress.
func (c *Client) listen(ctx context.Context) (bool, error) {
	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return false, fmt.Errorf("failed to dial live feed: %w", err)
	}
	defer conn.Close()

	log.Println("Live feed connected.")
	c.bus.Publish(events.Event{Name: events.LiveConnected})

	// ReadJSON only unblocks on conn activity, so a side goroutine closes
	// the conn on ctx cancellation and keeps the link alive with pings.
	done := make(chan struct{})
	defer close(done)
	go func() {
		pinger := time.NewTicker(pingPeriod)
		defer pinger.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.Close()
				return
			case <-pinger.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return true, err
	}

	for {
		var ev events.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return true, err
		}
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return true, err
		}
		c.republish(ev)
	}
}

// republish maps a feed message onto the internal bus. The feed is a
// booking feed, so anything not recognized still signals booking churn.
func (c *Client) republish(ev events.Event) {
	switch ev.Name {
	case "":
		// Malformed frame, nothing to relay.
	case events.AutoConfirmed:
		c.bus.Publish(ev)
	case events.LiveConnected:
		// The connect transition is published locally, not by the feed.
	default:
		c.bus.Publish(events.Event{Name: events.BookingUpdate, Data: ev.Data})
	}
}
