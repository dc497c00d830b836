package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

const defaultListLimit = 50

// Service persists notifications and pushes them to connected transports.
type Service struct {
	repo      Repository
	publisher RealtimePublisher
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetPublisher sets the realtime publisher (optional)
func (s *Service) SetPublisher(p RealtimePublisher) {
	s.publisher = p
}

// Notify persists a notification and pushes it to the user's live
// connections. Push failures are logged, never surfaced: the durable row is
// the contract, realtime delivery is best effort.
func (s *Service) Notify(ctx context.Context, userID int64, notifType Type, title, body string, data map[string]interface{}) (*Notification, error) {
	n := &Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   json.RawMessage(`{}`),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal notification data: %w", err)
		}
		n.Data = raw
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		unread, err := s.repo.CountUnread(ctx, userID)
		if err != nil {
			unread = 0
		}
		if err := s.publisher.NotifyNew(ctx, userID, NotificationResponseFromEntity(n), unread); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("realtime push failed")
		}
	}

	log.Debug().
		Int64("user_id", userID).
		Str("type", string(notifType)).
		Msg("notification created")
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, defaultListLimit)
}

// MarkRead marks the notification as read. The row must belong to the user.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// --- Adapters for the domain notifier interfaces ---

// NotifyReviewVerdict tells the assignee how their proof review ended.
func (s *Service) NotifyReviewVerdict(ctx context.Context, userID int64, taskTitle, verdict, comment string) error {
	var title string
	switch verdict {
	case "approved":
		title = "Task approved"
	case "rejected":
		title = "Task rejected"
	case "needs_work":
		title = "Task needs changes"
	default:
		title = "Task reviewed"
	}

	body := taskTitle
	if comment != "" {
		body = fmt.Sprintf("%s: %s", taskTitle, comment)
	}

	_, err := s.Notify(ctx, userID, TypeReviewVerdict, title, body, map[string]interface{}{
		"verdict": verdict,
		"comment": comment,
	})
	return err
}

// NotifyClawback tells the user their subscription reward was taken back.
func (s *Service) NotifyClawback(ctx context.Context, userID, amount int64, channelID string) error {
	body := fmt.Sprintf("You left %s before the hold period ended, %d coins were taken back", channelID, amount)

	_, err := s.Notify(ctx, userID, TypeClawback, "Reward taken back", body, map[string]interface{}{
		"channel_id": channelID,
		"amount":     amount,
	})
	return err
}

// NotifyWithdrawalResolved tells the user how their payout request ended.
func (s *Service) NotifyWithdrawalResolved(ctx context.Context, userID, withdrawalID, amount int64, status string) error {
	var title, body string
	switch status {
	case "approved":
		title = "Withdrawal approved"
		body = fmt.Sprintf("Your withdrawal of %d coins is on its way", amount)
	case "rejected":
		title = "Withdrawal rejected"
		body = fmt.Sprintf("Your withdrawal of %d coins was rejected, the coins are back on your balance", amount)
	default:
		title = "Withdrawal updated"
		body = fmt.Sprintf("Your withdrawal of %d coins is now %s", amount, status)
	}

	_, err := s.Notify(ctx, userID, TypeWithdrawal, title, body, map[string]interface{}{
		"withdrawal_id": withdrawalID,
		"amount":        amount,
		"status":        status,
	})
	return err
}
