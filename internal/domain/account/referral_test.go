package account

import "testing"

func TestParseReferralParam(t *testing.T) {
	tests := []struct {
		name   string
		param  string
		wantID int64
		wantOK bool
	}{
		{"valid link", "r12345", 12345, true},
		{"no prefix", "12345", 0, false},
		{"empty", "", 0, false},
		{"non-numeric suffix", "rabc", 0, false},
		{"prefix only", "r", 0, false},
		{"negative id", "r-5", 0, false},
		{"zero id", "r0", 0, false},
		{"other start param", "promo_SUMMER", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseReferralParam(tt.param)
			if ok != tt.wantOK || id != tt.wantID {
				t.Fatalf("ParseReferralParam(%q) = (%d, %v), want (%d, %v)",
					tt.param, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestReferralParamRoundTrip(t *testing.T) {
	id, ok := ParseReferralParam(ReferralParam(777))
	if !ok || id != 777 {
		t.Fatalf("round trip failed: got (%d, %v)", id, ok)
	}
}
