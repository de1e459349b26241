package deriv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketClient streams live ticks from the Deriv WebSocket API and
// delivers them to a TickHandler. It is thin plumbing: framing, subscribe
// requests and reconnects live here, nothing else.
type WebSocketClient struct {
	endpoint string
	appID    string
	symbols  []string
	handler  TickHandler
	logger   *zap.Logger
}

// NewWebSocketClient creates a client that subscribes to ticks for the given
// symbols and forwards them to handler.
func NewWebSocketClient(endpoint, appID string, symbols []string, handler TickHandler, logger *zap.Logger) *WebSocketClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketClient{
		endpoint: endpoint,
		appID:    appID,
		symbols:  symbols,
		handler:  handler,
		logger:   logger,
	}
}

type tickMessage struct {
	MsgType string `json:"msg_type"`
	Tick    struct {
		Symbol string  `json:"symbol"`
		Quote  float64 `json:"quote"`
		Epoch  int64   `json:"epoch"`
	} `json:"tick"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Run connects, subscribes and pumps ticks until ctx is cancelled. Lost
// connections are re-dialed with exponential backoff; per-symbol tick order
// is preserved within a connection.
func (c *WebSocketClient) Run(ctx context.Context) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("tick stream disconnected, retrying",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (c *WebSocketClient) runOnce(ctx context.Context) error {
	url := fmt.Sprintf("%s?app_id=%s", c.endpoint, c.appID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	defer conn.Close()
	c.logger.Info("connected to tick stream", zap.String("endpoint", c.endpoint))

	for _, symbol := range c.symbols {
		req := map[string]any{"ticks": symbol, "subscribe": 1}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("subscribe %s: %w", symbol, err)
		}
	}

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg tickMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("unparseable message from tick stream", zap.Error(err))
			continue
		}
		if msg.Error != nil {
			c.logger.Warn("tick stream error message",
				zap.String("code", msg.Error.Code),
				zap.String("message", msg.Error.Message),
			)
			continue
		}
		if msg.MsgType != "tick" {
			continue
		}

		c.handler(Tick{
			Symbol: msg.Tick.Symbol,
			Quote:  msg.Tick.Quote,
			Epoch:  time.Unix(msg.Tick.Epoch, 0),
		})
	}
}
