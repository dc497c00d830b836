package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	rows   []*Notification
	nextID int64
}

func (f *fakeRepo) Create(_ context.Context, n *Notification) error {
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	stored := *n
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID int64, unreadOnly bool, _ int) ([]*Notification, error) {
	items := []*Notification{}
	for _, n := range f.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		items = append(items, n)
	}
	return items, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, id, userID int64) error {
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) CountUnread(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type capturePublisher struct {
	userID int64
	last   *NotificationResponse
	unread int
	calls  int
	err    error
}

func (c *capturePublisher) NotifyNew(_ context.Context, userID int64, n *NotificationResponse, unreadCount int) error {
	c.calls++
	c.userID = userID
	c.last = n
	c.unread = unreadCount
	return c.err
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	repo := &fakeRepo{}
	pub := &capturePublisher{}
	svc := NewService(repo)
	svc.SetPublisher(pub)

	n, err := svc.Notify(context.Background(), 7, TypeClawback, "Reward taken back", "details", map[string]interface{}{"amount": 500})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if n.ID == 0 {
		t.Fatal("notification was not persisted")
	}

	var data map[string]interface{}
	if err := json.Unmarshal(n.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["amount"] != float64(500) {
		t.Fatalf("data amount = %v, want 500", data["amount"])
	}

	if pub.calls != 1 {
		t.Fatalf("publisher called %d times, want 1", pub.calls)
	}
	if pub.userID != 7 || pub.last.Title != "Reward taken back" {
		t.Fatalf("pushed to user %d with title %q", pub.userID, pub.last.Title)
	}
	if pub.unread != 1 {
		t.Fatalf("unread count = %d, want 1", pub.unread)
	}
}

func TestNotifyWithoutPublisher(t *testing.T) {
	svc := NewService(&fakeRepo{})

	if _, err := svc.Notify(context.Background(), 7, TypeWithdrawal, "t", "", nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
}

func TestNotifySurvivesPushFailure(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	svc.SetPublisher(&capturePublisher{err: errors.New("socket gone")})

	if _, err := svc.Notify(context.Background(), 7, TypeWithdrawal, "t", "", nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatal("durable row must outlive the failed push")
	}
}

func TestReviewVerdictTitles(t *testing.T) {
	tests := []struct {
		verdict string
		title   string
	}{
		{"approved", "Task approved"},
		{"rejected", "Task rejected"},
		{"needs_work", "Task needs changes"},
		{"something_else", "Task reviewed"},
	}

	for _, tt := range tests {
		t.Run(tt.verdict, func(t *testing.T) {
			pub := &capturePublisher{}
			svc := NewService(&fakeRepo{})
			svc.SetPublisher(pub)

			if err := svc.NotifyReviewVerdict(context.Background(), 3, "Join channel", tt.verdict, "fix the screenshot"); err != nil {
				t.Fatalf("notify verdict: %v", err)
			}
			if pub.last.Title != tt.title {
				t.Fatalf("title = %q, want %q", pub.last.Title, tt.title)
			}
			if pub.last.Body != "Join channel: fix the screenshot" {
				t.Fatalf("body = %q", pub.last.Body)
			}
			if pub.last.Type != TypeReviewVerdict {
				t.Fatalf("type = %s", pub.last.Type)
			}
		})
	}
}
