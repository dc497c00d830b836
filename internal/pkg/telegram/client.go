package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Membership is the answer to "is this user in this channel right now?".
// Unknown means the API could not answer; callers decide the policy
// (reward gates treat Unknown as NotMember and fail closed).
type Membership int

const (
	Unknown Membership = iota
	Member
	NotMember
)

func (m Membership) String() string {
	switch m {
	case Member:
		return "member"
	case NotMember:
		return "not_member"
	default:
		return "unknown"
	}
}

// Checker is the verification capability consumed by the reward core.
type Checker interface {
	IsMember(ctx context.Context, channelID string, userID int64) (Membership, error)
}

// Config holds Bot API configuration
type Config struct {
	BotToken string
	BaseURL  string
	Timeout  time.Duration
}

// Client calls the Telegram Bot API
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new Bot API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

type getChatMemberRequest struct {
	ChatID string `json:"chat_id"`
	UserID int64  `json:"user_id"`
}

type getChatMemberResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		Status string `json:"status"`
	} `json:"result"`
}

// memberStatuses are the chat-member states that count as "subscribed".
var memberStatuses = map[string]bool{
	"creator":       true,
	"administrator": true,
	"member":        true,
}

// IsMember asks the Bot API whether the user currently belongs to the
// channel. Transport failures and API-level errors return Unknown with a
// non-nil error; left/kicked/restricted members return NotMember.
func (c *Client) IsMember(ctx context.Context, channelID string, userID int64) (Membership, error) {
	if c == nil || c.httpClient == nil {
		return Unknown, fmt.Errorf("telegram client is not initialized")
	}
	if strings.TrimSpace(c.config.BotToken) == "" {
		return Unknown, fmt.Errorf("telegram config error: bot token is empty")
	}

	jsonData, err := json.Marshal(getChatMemberRequest{ChatID: channelID, UserID: userID})
	if err != nil {
		return Unknown, fmt.Errorf("failed to encode getChatMember request: %w", err)
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	url := fmt.Sprintf("%s/bot%s/getChatMember", base, c.config.BotToken)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Unknown, fmt.Errorf("telegram api call failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Unknown, fmt.Errorf("telegram api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Unknown, fmt.Errorf("telegram api call failed: %w", err)
	}

	var out getChatMemberResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Unknown, fmt.Errorf("failed to parse telegram response: %w", err)
	}

	// The API answers ok=false for unknown chats, users the bot has never
	// seen, and revoked bot permissions. All of those are "cannot answer".
	if !out.OK {
		return Unknown, fmt.Errorf("telegram api error: %s", out.Description)
	}

	if memberStatuses[out.Result.Status] {
		return Member, nil
	}
	return NotMember, nil
}
