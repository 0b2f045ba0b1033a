package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"alessacloud/internal/events"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

// StreamHandlers serves the live fulfillment board over server-sent events
type StreamHandlers struct {
	orderSvc *services.OrderService
	broker   events.Broker
}

// NewStreamHandlers creates new stream handlers
func NewStreamHandlers(orderSvc *services.OrderService, broker events.Broker) *StreamHandlers {
	return &StreamHandlers{
		orderSvc: orderSvc,
		broker:   broker,
	}
}

// OrderStream streams the tenant's order activity as server-sent events.
//
// The subscription is opened before the snapshot is read, so any order
// created between the two shows up both in the snapshot and as a delta;
// consumers treat deltas as upserts, which makes that overlap harmless.
// The first event is always an init snapshot of open orders, followed by
// order_created and status_changed deltas until the client disconnects.
func (h *StreamHandlers) OrderStream(c *gin.Context) {
	t := tenant.RequireTenant(c)
	ctx := c.Request.Context()

	sub, release, err := h.broker.Subscribe(ctx, t.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer release()

	open, err := h.orderSvc.ListOpen(ctx, t.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	initEvent, err := events.NewEvent(events.TypeInit, gin.H{"orders": open})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	// The broker owns the subscriber gauge; it moves on Subscribe/release.
	writeSSE(c.Writer, initEvent)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub:
			if !ok {
				return false
			}
			writeSSE(w, event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// writeSSE writes one event in the text/event-stream framing
func writeSSE(w io.Writer, event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	w.Write([]byte("event: " + event.Type + "\n"))
	w.Write([]byte("data: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}
