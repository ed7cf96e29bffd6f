package server

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/gatedesk/internal/notify"
	"github.com/zulandar/gatedesk/internal/queue"
)

const heartbeatInterval = 15 * time.Second

// handleEvents streams display updates to a connected client over SSE.
// Every new client gets the current snapshot immediately, then one display
// event per broadcast until it disconnects.
func handleEvents(eng *queue.Engine, hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		id, events := hub.Subscribe()
		defer hub.Unsubscribe(id)

		writeSSE(c.Writer, "display", eng.ComputeDisplay())
		c.Writer.Flush()

		ctx := c.Request.Context()
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case snap, ok := <-events:
				if !ok {
					return
				}
				writeSSE(c.Writer, "display", snap)
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
