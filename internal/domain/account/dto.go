package account

// EnsureRequest registers/refreshes the acting user
type EnsureRequest struct {
	Username   string `json:"username" validate:"max=64"`
	StartParam string `json:"start_param" validate:"max=64"`
}

// ProfileResponse is the user profile returned to the transport
type ProfileResponse struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Balance       int64  `json:"balance"`
	Tier          int    `json:"tier"`
	ReferrerID    *int64 `json:"referrer_id,omitempty"`
	ReferralParam string `json:"referral_param"`
}

// ReferralsResponse reports referral counts for the acting user
type ReferralsResponse struct {
	Count int `json:"count"`
}

func toProfile(u *User) ProfileResponse {
	resp := ProfileResponse{
		ID:            u.ID,
		Username:      u.Username,
		Balance:       u.Balance,
		Tier:          u.Tier,
		ReferralParam: ReferralParam(u.ID),
	}
	if u.HasReferrer() {
		id := u.ReferrerID.Int64
		resp.ReferrerID = &id
	}
	return resp
}
