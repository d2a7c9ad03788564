package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	stdsync "sync"
	"time"

	"github.com/coder/websocket"
)

// Envelope is the wire format carried over the shared sync topic.
//
// Sender is an opaque identifier generated once per client session; every
// peer discards inbound envelopes carrying its own sender id, which is
// what keeps a save from re-triggering its own handlers through the
// remote channel.
type Envelope struct {
	Key    string          `json:"key"`
	Data   json.RawMessage `json:"data"`
	Sender string          `json:"sender"`
}

// Transport moves envelopes between this client and its peers. The
// underlying channel is assumed at-least-once with no ordering guarantee;
// the sync service applies whatever arrives, last applied wins.
type Transport interface {
	// Publish sends an envelope to all peers on the shared topic.
	Publish(ctx context.Context, env Envelope) error

	// Receive returns the channel of inbound envelopes. The channel is
	// closed when the transport shuts down.
	Receive() <-chan Envelope

	// Close tears the connection down and closes the receive channel.
	Close() error
}

// wsTransport is the websocket Transport used against the shared broker.
type wsTransport struct {
	url    string
	inbox  chan Envelope
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	// mu guards conn and redialWait: the read loop swaps conn on redial
	// while Publish and Close use it from caller goroutines.
	mu         stdsync.Mutex
	conn       *websocket.Conn
	redialWait time.Duration
}

// DialBroker connects to the pub/sub broker at url and starts the read
// loop. Read failures trigger redials with a flat backoff until the
// transport is closed; while disconnected, publishes fail and the caller
// degrades to local-only persistence.
func DialBroker(ctx context.Context, url string, logger *log.Logger) (Transport, error) {
	if logger == nil {
		logger = log.Default()
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker %s: %w", url, err)
	}

	tctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		url:        url,
		conn:       conn,
		inbox:      make(chan Envelope, 100),
		ctx:        tctx,
		cancel:     cancel,
		logger:     logger,
		redialWait: 2 * time.Second,
	}
	go t.readLoop()
	return t, nil
}

func (t *wsTransport) current() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *wsTransport) readLoop() {
	defer close(t.inbox)
	for {
		_, data, err := t.current().Read(t.ctx)
		if err != nil {
			if t.ctx.Err() != nil {
				return
			}
			t.logger.Printf("broker read failed: %v, reconnecting", err)
			if !t.redial() {
				return
			}
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.logger.Printf("Warning: dropping malformed envelope: %v", err)
			continue
		}
		select {
		case t.inbox <- env:
		case <-t.ctx.Done():
			return
		}
	}
}

// redial reconnects after a read failure. Returns false once the
// transport has been closed.
func (t *wsTransport) redial() bool {
	for {
		t.mu.Lock()
		wait := t.redialWait
		t.mu.Unlock()
		select {
		case <-t.ctx.Done():
			return false
		case <-time.After(wait):
		}
		conn, _, err := websocket.Dial(t.ctx, t.url, nil)
		if err != nil {
			t.logger.Printf("broker redial failed: %v", err)
			continue
		}
		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()
		t.logger.Printf("broker reconnected")
		return true
	}
}

func (t *wsTransport) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := t.current().Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to publish to broker: %w", err)
	}
	return nil
}

func (t *wsTransport) Receive() <-chan Envelope {
	return t.inbox
}

func (t *wsTransport) Close() error {
	t.cancel()
	return t.current().Close(websocket.StatusNormalClosure, "client shutting down")
}
