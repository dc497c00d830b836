package withdraw

import "time"

// CreateWithdrawalRequest is the user payout request payload.
type CreateWithdrawalRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Kind   string `json:"kind" validate:"required,withdraw_kind"`
}

// WithdrawalResponse is the API shape for a payout request.
type WithdrawalResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Kind      Kind      `json:"kind"`
	Status    Status    `json:"status"`
	AdminID   *int64    `json:"admin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WithdrawalResponseFromEntity converts entity to response DTO
func WithdrawalResponseFromEntity(w *Withdrawal) *WithdrawalResponse {
	resp := &WithdrawalResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Amount:    w.Amount,
		Kind:      w.Kind,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if w.AdminID.Valid {
		id := w.AdminID.Int64
		resp.AdminID = &id
	}
	return resp
}
