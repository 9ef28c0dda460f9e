package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/unklstewy/mockflights/internal/server"
)

// streamRemote reads frames from a feed server's WebSocket and forwards them
// to send until the server closes the stream or ctx is cancelled. A server
// going away is not an error.
func streamRemote(ctx context.Context, url string, send func(tea.Msg), logger *zap.Logger) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logger.Info("Connected to remote feed", zap.String("url", url))

	for {
		var frame server.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Info("Remote feed closed", zap.Error(err))
				return nil
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}
		send(frameMsg{runID: frame.RunID, reports: frame.Reports})
	}
}
