package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles admin set HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns admin set routes, all admin-gated.
func (h *Handler) Routes(requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{userID}", h.Remove)
	})

	return r
}

// List handles GET /admins
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*AdminResponse, len(admins))
	for i, a := range admins {
		items[i] = AdminResponseFromEntity(a)
	}
	response.OK(w, items)
}

// Add handles POST /admins
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddAdminRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	addedBy := middleware.GetActingUser(r.Context())
	a, err := h.service.Add(r.Context(), req.UserID, addedBy)
	if err != nil {
		if errors.Is(err, ErrAlreadyAdmin) {
			response.Conflict(w, "User is already an admin")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, AdminResponseFromEntity(a))
}

// Remove handles DELETE /admins/{userID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.Remove(r.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Admin not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
