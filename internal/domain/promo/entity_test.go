package promo

import (
	"database/sql"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"summer", "SUMMER"},
		{"  Stars2026  ", "STARS2026"},
		{"ALREADY", "ALREADY"},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	eternal := &Promo{}
	if eternal.Expired(now) {
		t.Error("promo without expiry must never expire")
	}

	past := &Promo{ExpiresAt: sql.NullTime{Time: now.Add(-time.Minute), Valid: true}}
	if !past.Expired(now) {
		t.Error("promo past its expiry must be expired")
	}

	future := &Promo{ExpiresAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true}}
	if future.Expired(now) {
		t.Error("promo before its expiry must not be expired")
	}
}

func TestExhausted(t *testing.T) {
	unlimited := &Promo{}
	if unlimited.Exhausted() {
		t.Error("untracked promo must never exhaust")
	}

	spent := &Promo{UsesLeft: sql.NullInt64{Int64: 0, Valid: true}}
	if !spent.Exhausted() {
		t.Error("tracked promo at zero must be exhausted")
	}

	live := &Promo{UsesLeft: sql.NullInt64{Int64: 3, Valid: true}}
	if live.Exhausted() {
		t.Error("tracked promo with uses left must not be exhausted")
	}
}
