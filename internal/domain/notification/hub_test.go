package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newLocalHubWithUser(userID int64) (*Hub, *Connection) {
	h := NewHubWithInstanceID(nil, "instance-a")
	conn := &Connection{UserID: userID, Send: make(chan []byte, 4)}
	h.connections[userID] = map[*Connection]bool{conn: true}
	return h, conn
}

func waitPayload(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting websocket payload")
	}
	return nil
}

func TestPublisherDeliversToLocalConnections(t *testing.T) {
	hub, conn := newLocalHubWithUser(7)
	pub := NewWSPublisher(hub)

	resp := &NotificationResponse{ID: 1, Type: TypeWithdrawal, Title: "Withdrawal approved"}
	if err := pub.NotifyNew(context.Background(), 7, resp, 2); err != nil {
		t.Fatalf("notify new: %v", err)
	}

	var envelope struct {
		Type string `json:"type"`
		Data struct {
			Notification *NotificationResponse `json:"notification"`
			UnreadCount  int                   `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(waitPayload(t, conn.Send), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Type != "notification:new" {
		t.Fatalf("envelope type = %q", envelope.Type)
	}
	if envelope.Data.Notification.Title != "Withdrawal approved" || envelope.Data.UnreadCount != 2 {
		t.Fatalf("envelope data = %+v", envelope.Data)
	}
}

func TestSendSkipsOtherUsers(t *testing.T) {
	hub, conn := newLocalHubWithUser(7)

	if err := hub.SendToUserJSON(8, map[string]string{"type": "notification:new"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-conn.Send:
		t.Fatalf("user 7 received a payload intended for user 8: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCrossInstanceRelay(t *testing.T) {
	sender := NewHubWithInstanceID(nil, "instance-a")
	published := make(chan []byte, 1)
	sender.publishUserEventFn = func(_ context.Context, channel string, payload []byte) error {
		if channel != userEventsChannel {
			t.Errorf("channel = %q, want %q", channel, userEventsChannel)
		}
		published <- payload
		return nil
	}

	if err := sender.SendToUserJSON(7, map[string]string{"title": "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	relayed := waitPayload(t, published)

	// The sender must drop its own relayed event.
	senderConn := &Connection{UserID: 7, Send: make(chan []byte, 4)}
	sender.connections[7] = map[*Connection]bool{senderConn: true}
	sender.handleUserEventPayload(string(relayed))
	select {
	case msg := <-senderConn.Send:
		t.Fatalf("sender re-delivered its own event: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}

	// Another instance delivers it to its local connections.
	receiver, conn := newLocalHubWithUser(7)
	receiver.instanceID = "instance-b"
	receiver.handleUserEventPayload(string(relayed))

	var payload map[string]string
	if err := json.Unmarshal(waitPayload(t, conn.Send), &payload); err != nil {
		t.Fatalf("unmarshal relayed payload: %v", err)
	}
	if payload["title"] != "hello" {
		t.Fatalf("relayed payload = %v", payload)
	}
}
