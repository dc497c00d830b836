package withdraw

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles withdrawal HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates withdrawal handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns withdrawal routes. Users open requests; the queue and
// resolutions are admin-only.
func (h *Handler) Routes(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", h.Create)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/pending", h.ListPending)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})

	return r
}

// Create handles POST /withdrawals
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWithdrawalRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetActingUser(r.Context())
	wd, err := h.service.Create(r.Context(), userID, req.Amount, Kind(req.Kind))
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			response.UnprocessableEntity(w, "Balance is below the requested amount")
		case errors.Is(err, ErrDailyLimit):
			response.Error(w, http.StatusTooManyRequests, "DAILY_LIMIT", "Daily withdrawal limit reached")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, WithdrawalResponseFromEntity(wd))
}

// ListPending handles GET /withdrawals/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.ListPending(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*WithdrawalResponse, len(pending))
	for i, wd := range pending {
		items[i] = WithdrawalResponseFromEntity(wd)
	}
	response.OK(w, items)
}

// Approve handles POST /withdrawals/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Approve)
}

// Reject handles POST /withdrawals/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.Reject)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, adminID int64) (*Withdrawal, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid withdrawal ID")
		return
	}

	adminID := middleware.GetActingUser(r.Context())
	wd, err := fn(r.Context(), id, adminID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Withdrawal not found")
		case errors.Is(err, ErrAlreadyProcessed):
			response.Conflict(w, "Withdrawal already processed")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, WithdrawalResponseFromEntity(wd))
}
