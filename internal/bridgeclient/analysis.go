package bridgeclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/hisui/usi-bridge/pkg/enginedto"
)

// AnalysisHandler receives one telemetry frame per call.
type AnalysisHandler func(enginedto.SearchInfo)

// WatchAnalysis connects to the bridge's analysis websocket and forwards
// frames to the handler until ctx is cancelled or the stream closes. A
// normal closure returns nil.
func (c *Client) WatchAnalysis(ctx context.Context, handler AnalysisHandler) error {
	conn, _, err := websocket.Dial(ctx, c.analysisURL(), nil)
	if err != nil {
		return fmt.Errorf("dial analysis stream: %w", err)
	}
	defer conn.Close(websocket.StatusInternalError, "watcher aborted")

	for {
		var frame enginedto.SearchInfo
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			return err
		}
		handler(frame)
	}
}

func (c *Client) analysisURL() string {
	url := c.baseURL + "/engine/analysis"
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	if strings.HasPrefix(url, "http://") {
		return "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url
}
