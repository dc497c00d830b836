package notification

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Handler handles notification HTTP requests and the transport stream
type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates notification handler
func NewHandler(service *Service, hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}

				log.Warn().Str("origin", origin).Msg("websocket origin rejected")
				return false
			},
		},
	}
}

// Routes returns notification routes, all user-scoped.
func (h *Handler) Routes(requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.List)
		r.Post("/{id}/read", h.MarkRead)
	})

	return r
}

// List handles GET /notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetActingUser(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.service.List(r.Context(), userID, unreadOnly)
	if err != nil {
		response.InternalError(w)
		return
	}

	resp := make([]*NotificationResponse, len(items))
	for i, n := range items {
		resp[i] = NotificationResponseFromEntity(n)
	}
	response.OK(w, resp)
}

// MarkRead handles POST /notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	userID := middleware.GetActingUser(r.Context())
	if err := h.service.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Notification not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": "ok"})
}

// WebSocket handles GET /ws. The stream is outbound only: the transport
// identifies the user it delivers for and receives notification:new events.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		response.BadRequest(w, "Invalid user_id")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Connection{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)

	go h.wsReader(client)
	go h.wsWriter(client)
}

// wsReader drains the connection to keep the pong handler running and
// detect the close.
func (h *Handler) wsReader(client *Connection) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Int64("user_id", client.UserID).Msg("websocket read error")
			}
			return
		}
	}
}

func (h *Handler) wsWriter(client *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
