package account

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles account HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new account handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the account router
func (h *Handler) Routes(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", h.Ensure)
		r.Get("/me", h.Me)
		r.Get("/me/referrals", h.MyReferrals)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/ids", h.ListIDs)
		r.Get("/{id}", h.GetByID)
	})

	return r
}

// Ensure handles POST /users, registering the acting user on first contact
func (h *Handler) Ensure(w http.ResponseWriter, r *http.Request) {
	var req EnsureRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetActingUser(r.Context())
	u, err := h.service.Ensure(r.Context(), userID, req.Username, req.StartParam)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, toProfile(u))
}

// Me handles GET /users/me, the balance request path
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetActingUser(r.Context())

	u, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, toProfile(u))
}

// MyReferrals handles GET /users/me/referrals
func (h *Handler) MyReferrals(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetActingUser(r.Context())

	count, err := h.service.Referrals(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, ReferralsResponse{Count: count})
}

// GetByID handles GET /users/{id} (admin)
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, toProfile(u))
}

// ListIDs handles GET /users/ids (admin, broadcast support)
func (h *Handler) ListIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListIDs(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"ids": ids, "count": len(ids)})
}

// Stats handles GET /stats (admin), mounted at the API root
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, stats)
}
