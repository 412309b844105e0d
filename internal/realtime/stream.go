package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/logging"
)

// Frame is one server-sent event. Last ends the stream after it is written.
type Frame struct {
	Event string
	Data  any
	Last  bool
}

// Loader builds the frame to send. trigger is nil for the initial frame.
type Loader func(ctx context.Context, trigger *Event) Frame

// Stream subscribes to channels and serves a Server-Sent Events response:
// the initial snapshot, then a fresh snapshot for every change event, with
// keep-alive comments in between. It returns when the client goes away or a
// Last frame is written.
func (b *Broker) Stream(c *gin.Context, channels []string, load Loader) {
	ctx := c.Request.Context()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	sub, err := b.Subscribe(ctx, channels...)
	if err != nil {
		logging.New(ctx).Error("realtime.stream", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "realtime unavailable"})
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	if writeFrame(c, flusher, load(ctx, nil)) {
		return
	}

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if writeFrame(c, flusher, load(ctx, &ev)) {
				return
			}
		}
	}
}

// writeFrame reports whether the stream should end.
func writeFrame(c *gin.Context, flusher http.Flusher, f Frame) bool {
	if f.Event == "" {
		return f.Last
	}
	data, err := json.Marshal(f.Data)
	if err != nil {
		data = []byte(`{}`)
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", f.Event, data)
	flusher.Flush()
	return f.Last
}
