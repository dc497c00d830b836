package sponsor

import "time"

// AddChannelRequest is the admin payload for registering a sponsor channel.
type AddChannelRequest struct {
	ChatID string `json:"chat_id" validate:"required,max=64"`
	Title  string `json:"title" validate:"omitempty,max=200"`
}

// ChannelResponse is the API shape for a sponsor channel.
type ChannelResponse struct {
	ChatID    string    `json:"chat_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckResponse reports which channels the user still has to join.
type CheckResponse struct {
	Joined  bool               `json:"joined"`
	Missing []*ChannelResponse `json:"missing"`
}

// ChannelResponseFromEntity converts entity to response DTO
func ChannelResponseFromEntity(c *Channel) *ChannelResponse {
	return &ChannelResponse{ChatID: c.ChatID, Title: c.Title, CreatedAt: c.CreatedAt}
}
