package ledger

import "testing"

func TestReferralBonus(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent int64
		want    int64
	}{
		{"15 percent of 1000", 1000, 15, 150},
		{"floors fractional bonus", 999, 15, 149},
		{"small amount floors to zero", 5, 15, 0},
		{"penalty never shared", -1000, 15, 0},
		{"zero amount", 0, 15, 0},
		{"zero percent", 1000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReferralBonus(tt.amount, tt.percent); got != tt.want {
				t.Fatalf("ReferralBonus(%d, %d) = %d, want %d",
					tt.amount, tt.percent, got, tt.want)
			}
		})
	}
}
