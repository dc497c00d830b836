package sponsor

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles sponsor HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates sponsor handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns sponsor routes
func (h *Handler) Routes(requireUser, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/check", h.Check)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.Add)
		r.Delete("/{chatID}", h.Remove)
	})

	return r
}

// List handles GET /sponsors
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*ChannelResponse, len(channels))
	for i, c := range channels {
		items[i] = ChannelResponseFromEntity(c)
	}
	response.OK(w, items)
}

// Check handles GET /sponsors/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetActingUser(r.Context())
	missing, err := h.service.CheckUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*ChannelResponse, len(missing))
	for i, c := range missing {
		items[i] = ChannelResponseFromEntity(c)
	}
	response.OK(w, &CheckResponse{Joined: len(items) == 0, Missing: items})
}

// Add handles POST /sponsors
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddChannelRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Add(r.Context(), req.ChatID, req.Title)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, ChannelResponseFromEntity(c))
}

// Remove handles DELETE /sponsors/{chatID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if chatID == "" {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	if err := h.service.Remove(r.Context(), chatID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Sponsor channel not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
