package notification

import "context"

// RealtimePublisher pushes freshly created notifications to connected
// transports.
type RealtimePublisher interface {
	NotifyNew(ctx context.Context, userID int64, n *NotificationResponse, unreadCount int) error
}
