package notification

import "context"

type wsUserSender interface {
	SendToUserJSON(userID int64, payload any) error
}

// WSPublisher publishes notification:new events over websocket.
type WSPublisher struct {
	sender wsUserSender
}

// NewWSPublisher creates a WS-backed realtime publisher.
func NewWSPublisher(sender wsUserSender) *WSPublisher {
	return &WSPublisher{sender: sender}
}

func (p *WSPublisher) NotifyNew(ctx context.Context, userID int64, n *NotificationResponse, unreadCount int) error {
	if p == nil || p.sender == nil {
		return nil
	}

	payload := map[string]interface{}{
		"type": "notification:new",
		"data": map[string]interface{}{
			"notification": n,
			"unread_count": unreadCount,
		},
	}

	return p.sender.SendToUserJSON(userID, payload)
}
