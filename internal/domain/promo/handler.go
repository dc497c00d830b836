package promo

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles promo HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates promo handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns promo routes. Creation is admin-only, redemption needs an
// acting user.
func (h *Handler) Routes(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.Create)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/redeem", h.Redeem)
	})

	return r
}

// Create handles POST /promocodes
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePromoRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.service.Create(r.Context(), req.Code, req.Reward, req.ExpiresAt, req.UsesLeft)
	if err != nil {
		if errors.Is(err, ErrCodeExists) {
			response.Conflict(w, "Promo code already exists")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, PromoResponseFromEntity(p))
}

// Redeem handles POST /promocodes/redeem
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetActingUser(r.Context())
	granted, err := h.service.Redeem(r.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Promo code not found")
		case errors.Is(err, ErrExpired):
			response.UnprocessableEntity(w, "Promo code expired")
		case errors.Is(err, ErrExhausted):
			response.UnprocessableEntity(w, "Promo code has no uses left")
		case errors.Is(err, ErrAlreadyUsed):
			response.Conflict(w, "Promo code already used")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, &RedeemResponse{Code: granted.Code, Granted: granted.Amount})
}
