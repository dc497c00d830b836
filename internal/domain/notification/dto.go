package notification

import (
	"encoding/json"
	"time"
)

// NotificationResponse is the API representation of a notification
type NotificationResponse struct {
	ID        int64           `json:"id"`
	Type      Type            `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationResponseFromEntity converts entity to response
func NotificationResponseFromEntity(n *Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
