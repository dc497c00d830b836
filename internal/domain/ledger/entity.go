package ledger

import "time"

// EntryType is the recorded cause of a balance delta. Every balance
// change carries exactly one entry; there is no way to move coins
// without leaving one behind.
type EntryType string

const (
	EntryTaskReward       EntryType = "task_reward"
	EntryReferralBonus    EntryType = "referral_bonus"
	EntryPromoCode        EntryType = "promo_code"
	EntryEventReward      EntryType = "event_reward"
	EntryClawback         EntryType = "clawback"
	EntryWithdrawal       EntryType = "withdrawal"
	EntryWithdrawalRefund EntryType = "withdrawal_refund"
)

// Entry is one ledger row (matches ledger_entries table)
type Entry struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Amount      int64     `db:"amount"`
	Type        EntryType `db:"type"`
	ReferenceID string    `db:"reference_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// ReferralBonus computes the referrer's cut of a positive reward,
// floored. Non-positive amounts never produce a bonus: penalties and
// holds are not shared with referrers.
func ReferralBonus(amount, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return amount * percent / 100
}
