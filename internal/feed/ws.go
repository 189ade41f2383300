package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures the WebSocket ticker source.
type WSConfig struct {
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// Buffer is the capacity of the tick channel.
	Buffer int
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     30 * time.Second,
		Buffer:           1024,
	}
}

// tickMessage is the wire format of one ticker update.
type tickMessage struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// WSTickerSource streams reference prices for one symbol over a
// WebSocket connection. A reader goroutine decodes incoming ticks into
// a buffered channel; Next drains it. The stream ends when the server
// closes the connection or Close is called.
type WSTickerSource struct {
	endpoint string
	symbol   string
	config   WSConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	ticks chan float64
	done  chan struct{}
	wg    sync.WaitGroup

	// readErr holds the first terminal read error, if any.
	readErr   error
	readErrMu sync.Mutex
}

// NewWSTickerSource dials endpoint, subscribes to symbol, and starts
// the read loop.
func NewWSTickerSource(ctx context.Context, endpoint, symbol string, config *WSConfig) (*WSTickerSource, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	s := &WSTickerSource{
		endpoint: endpoint,
		symbol:   symbol,
		config:   cfg,
		ticks:    make(chan float64, cfg.Buffer),
		done:     make(chan struct{}),
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	s.conn = conn

	sub := map[string]string{"op": "subscribe", "symbol": symbol}
	conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write subscribe: %w", err)
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// Next returns the next tick price for the subscribed symbol.
func (s *WSTickerSource) Next(ctx context.Context) (float64, error) {
	select {
	case price, ok := <-s.ticks:
		if !ok {
			return 0, s.terminalErr()
		}
		return price, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// terminalErr reports why the stream ended.
func (s *WSTickerSource) terminalErr() error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.readErrMu.Lock()
	defer s.readErrMu.Unlock()
	if s.readErr != nil {
		return fmt.Errorf("stream ended: %v: %w", s.readErr, ErrExhausted)
	}
	return ErrExhausted
}

// Close closes the WebSocket connection and stops the read loop.
func (s *WSTickerSource) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.conn.Close()
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads ticks from the WebSocket and buffers them for Next.
func (s *WSTickerSource) readLoop() {
	defer s.wg.Done()
	defer close(s.ticks)

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.readErrMu.Lock()
				s.readErr = err
				s.readErrMu.Unlock()
			}
			return
		}

		var tick tickMessage
		if err := json.Unmarshal(message, &tick); err != nil {
			// Skip frames we do not understand (heartbeats, acks).
			continue
		}
		if tick.Symbol != "" && tick.Symbol != s.symbol {
			continue
		}
		if tick.Price <= 0 {
			continue
		}

		// Block until the consumer catches up - never drop ticks.
		select {
		case s.ticks <- tick.Price:
		case <-s.done:
			return
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *WSTickerSource) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			s.conn.WriteMessage(websocket.PingMessage, nil)
			s.connMu.Unlock()
		}
	}
}

var _ PriceSource = (*WSTickerSource)(nil)
