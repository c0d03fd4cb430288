package clients

import (
	"context"

	ws "carloan-service/internal/transport/websocket"
)

// WebSocketClient translates application events into hub pushes. A nil hub
// turns every notification into a no-op, which keeps tests and stripped-down
// deployments free of websocket plumbing.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func (c *WebSocketClient) NotifyReportProgress(ctx context.Context, userID int64, reportID string, progress float64, stage string) error {
	if c.hub == nil {
		return nil
	}

	data := map[string]any{
		"id":       reportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Publish(userID, &ws.Event{Type: "report_progress", Data: data})
	return nil
}

func (c *WebSocketClient) NotifyReportReady(ctx context.Context, userID int64, reportID, url, filename string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Publish(userID, &ws.Event{
		Type: "report_ready",
		Data: map[string]any{
			"id":       reportID,
			"url":      url,
			"filename": filename,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyReportFailed(ctx context.Context, userID int64, reportID, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Publish(userID, &ws.Event{
		Type: "report_failed",
		Data: map[string]any{
			"id":      reportID,
			"message": errMsg,
		},
	})
	return nil
}

// NotifyLoanPaidOff tells the user's open dashboards that one of their loans
// was just settled.
func (c *WebSocketClient) NotifyLoanPaidOff(ctx context.Context, userID, carID int64, paidOffBy string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Publish(userID, &ws.Event{
		Type: "loan_paid_off",
		Data: map[string]any{
			"car_id":      carID,
			"paid_off_by": paidOffBy,
		},
	})
	return nil
}
