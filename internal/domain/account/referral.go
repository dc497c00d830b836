package account

import (
	"fmt"
	"strconv"
	"strings"
)

// ReferralPrefix distinguishes referral deep links from other start
// parameters ("r12345" → referrer 12345).
const ReferralPrefix = "r"

// ParseReferralParam extracts a referrer ID from a deep-link start
// parameter. Anything that does not parse means "no referrer": a broken
// link must never fail the /start flow.
func ParseReferralParam(param string) (int64, bool) {
	if !strings.HasPrefix(param, ReferralPrefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(param, ReferralPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ReferralParam builds the deep-link start parameter for a user
func ReferralParam(userID int64) string {
	return fmt.Sprintf("%s%d", ReferralPrefix, userID)
}
