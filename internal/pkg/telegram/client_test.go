package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BotToken: "test-token",
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
	})
}

func botAPIAnswer(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]string{"status": status},
		})
	}
}

func TestIsMember_StatusMapping(t *testing.T) {
	tests := []struct {
		status string
		want   Membership
	}{
		{"creator", Member},
		{"administrator", Member},
		{"member", Member},
		{"left", NotMember},
		{"kicked", NotMember},
		{"restricted", NotMember},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			client := newTestClient(t, botAPIAnswer(tt.status))
			got, err := client.IsMember(context.Background(), "@channel", 42)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("status %q: got %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestIsMember_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"description": "Bad Request: chat not found",
		})
	})

	got, err := client.IsMember(context.Background(), "@missing", 42)
	if err == nil {
		t.Fatal("expected error for ok=false response")
	}
	if got != Unknown {
		t.Fatalf("got %v, want Unknown", got)
	}
}

func TestIsMember_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(Config{BotToken: "test-token", BaseURL: srv.URL, Timeout: time.Second})
	got, err := client.IsMember(context.Background(), "@channel", 42)
	if err == nil {
		t.Fatal("expected error for unreachable API")
	}
	if got != Unknown {
		t.Fatalf("got %v, want Unknown", got)
	}
}

func TestIsMember_RequestPayload(t *testing.T) {
	var gotPath string
	var gotReq getChatMemberRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		botAPIAnswer("member")(w, r)
	})

	if _, err := client.IsMember(context.Background(), "@channel", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/bottest-token/getChatMember" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotReq.ChatID != "@channel" || gotReq.UserID != 42 {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
}
