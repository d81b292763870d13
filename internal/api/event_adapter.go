package api

import "time"

// SSEEventBroadcaster adapts the SSEHub to the dashboard's Notifier
type SSEEventBroadcaster struct {
	sseHub *SSEHub
}

// NewSSEEventBroadcaster creates a new SSE event broadcaster
func NewSSEEventBroadcaster(sseHub *SSEHub) *SSEEventBroadcaster {
	return &SSEEventBroadcaster{sseHub: sseHub}
}

// Notify sends a dashboard event via SSE
func (seb *SSEEventBroadcaster) Notify(eventType, panelID string, data interface{}) {
	seb.sseHub.Broadcast(Event{
		Type:      eventType,
		PanelID:   panelID,
		Data:      data,
		Timestamp: time.Now(),
	})
}
