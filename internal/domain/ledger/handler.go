package ledger

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
)

// Handler handles ledger HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates new ledger handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the ledger router
func (h *Handler) Routes(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/me", h.MyHistory)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/{userID}", h.UserHistory)
	})

	return r
}

// EntryResponse is one audit-trail row
type EntryResponse struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	ReferenceID string    `json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEntryResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			ID:          e.ID,
			Amount:      e.Amount,
			Type:        string(e.Type),
			ReferenceID: e.ReferenceID,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// MyHistory handles GET /ledger/me
func (h *Handler) MyHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetActingUser(r.Context())
	h.history(w, r, userID)
}

// UserHistory handles GET /ledger/{userID} (admin)
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}
	h.history(w, r, userID)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, userID int64) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalError(w)
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"balance": balance,
		"entries": toEntryResponses(entries),
	})
}
