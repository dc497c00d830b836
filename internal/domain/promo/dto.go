package promo

import "time"

// CreatePromoRequest is the admin creation payload.
type CreatePromoRequest struct {
	Code      string     `json:"code" validate:"required,min=3,max=64"`
	Reward    int64      `json:"reward" validate:"required,gt=0"`
	ExpiresAt *time.Time `json:"expires_at" validate:"omitempty"`
	UsesLeft  *int64     `json:"uses_left" validate:"omitempty,gt=0"`
}

// RedeemRequest is the user redemption payload.
type RedeemRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// PromoResponse is the API shape for a code.
type PromoResponse struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Reward    int64      `json:"reward"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UsesLeft  *int64     `json:"uses_left,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RedeemResponse reports what the activation paid.
type RedeemResponse struct {
	Code    string `json:"code"`
	Granted int64  `json:"granted"`
}

// PromoResponseFromEntity converts entity to response DTO
func PromoResponseFromEntity(p *Promo) *PromoResponse {
	resp := &PromoResponse{
		ID:        p.ID,
		Code:      p.Code,
		Reward:    p.Reward,
		CreatedAt: p.CreatedAt,
	}
	if p.ExpiresAt.Valid {
		t := p.ExpiresAt.Time
		resp.ExpiresAt = &t
	}
	if p.UsesLeft.Valid {
		n := p.UsesLeft.Int64
		resp.UsesLeft = &n
	}
	return resp
}
