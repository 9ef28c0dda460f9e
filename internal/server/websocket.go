package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/unklstewy/mockflights/internal/feedpump"
	"github.com/unklstewy/mockflights/pkg/flightsim"
)

// writeWait bounds a single frame write to a slow client.
const writeWait = 5 * time.Second

// Frame is one WebSocket message: the reports drained during one frame.
type Frame struct {
	RunID   string             `json:"run_id"`
	Reports []flightsim.Report `json:"reports"`
}

// handleWebSocket streams the feed to one client, one Frame per non-empty
// frame. Clients share the feed: every snapshot goes to exactly one consumer.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(s.closing, cancel)
	defer stop()

	// Reader: the client sends nothing useful, but reading surfaces closes
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	runID := s.sim.Status().ID
	logger := s.logger.With(zap.String("remote", r.RemoteAddr))
	logger.Info("WebSocket client connected")

	pump := feedpump.New(s.sim, s.feed.FrameInterval(), s.feed.BatchSize, logger)
	err = pump.Run(ctx, func(_ context.Context, batch []flightsim.Report) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(Frame{RunID: runID, Reports: batch})
	})
	if err != nil {
		logger.Info("WebSocket client dropped", zap.Error(err))
		return
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closing"),
		time.Now().Add(time.Second))
	logger.Info("WebSocket client disconnected")
}
