package api

import (
	"context"
	"net/http"
	"time"

	xhttp "OracleAgent/pkg/http"
	xlogger "OracleAgent/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// StreamConfig controls the snapshot websocket.
type StreamConfig struct {
	Interval     time.Duration
	PingInterval time.Duration
	WriteTimeout time.Duration
	Origins      []string // empty or "*" accepts any origin
}

type streamFrame struct {
	Type  string          `json:"type"`
	Data  interface{}     `json:"data,omitempty"`
	Error *xhttp.AppError `json:"error,omitempty"`
}

// Stream upgrades to a websocket and pushes a fresh snapshot every interval.
// Fetch failures are sent as error frames and the stream carries on.
func (h *OracleHandler) Stream(c echo.Context) error {
	cfg := h.streamDefaults()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.Origins),
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// read loop: drains control frames and notices the client leaving
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug("stream opened", xlogger.String("remote", c.RealIP()))
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	ping := time.NewTicker(cfg.PingInterval)
	defer ping.Stop()

	if err := h.pushSnapshot(ctx, conn, cfg.WriteTimeout); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("stream closed", xlogger.String("remote", c.RealIP()))
			return nil
		case <-ping.C:
			deadline := time.Now().Add(cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := h.pushSnapshot(ctx, conn, cfg.WriteTimeout); err != nil {
				return nil
			}
		}
	}
}

func (h *OracleHandler) pushSnapshot(ctx context.Context, conn *websocket.Conn, writeTimeout time.Duration) error {
	frame := streamFrame{Type: "snapshot"}
	snap, err := h.market.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.logger.Warn("stream snapshot failed", xlogger.Error(err))
		frame = streamFrame{Type: "error", Error: toAppError(err)}
	} else {
		frame.Data = snap
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(frame)
}

func (h *OracleHandler) streamDefaults() StreamConfig {
	cfg := h.stream
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return cfg
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
