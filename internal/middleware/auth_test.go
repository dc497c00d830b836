package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func protectedEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthAllowsValidServiceToken(t *testing.T) {
	var gotActing int64
	protected := Auth("secret-token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActing = GetActingUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set(ActingUserHeader, "12345")
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotActing != 12345 {
		t.Fatalf("expected acting user 12345, got %d", gotActing)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	protected := Auth("secret-token")(protectedEcho())

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer wrong"},
		{"no bearer prefix", "secret-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireUserRejectsMissingHeader(t *testing.T) {
	protected := Auth("secret-token")(RequireUser()(protectedEcho()))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

type fakeAdminChecker struct {
	admins map[int64]bool
}

func (f *fakeAdminChecker) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return f.admins[userID], nil
}

func TestRequireAdmin(t *testing.T) {
	checker := &fakeAdminChecker{admins: map[int64]bool{7: true}}
	protected := Auth("secret-token")(RequireAdmin(checker)(protectedEcho()))

	tests := []struct {
		name   string
		acting string
		want   int
	}{
		{"admin passes", "7", http.StatusOK},
		{"non-admin forbidden", "8", http.StatusForbidden},
		{"missing acting user", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer secret-token")
			if tt.acting != "" {
				req.Header.Set(ActingUserHeader, tt.acting)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
