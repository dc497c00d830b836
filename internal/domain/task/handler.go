package task

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles task HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates task handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the task router. Assignment routes are mounted on top of
// this one from main so that POST /tasks/{id}/assignments lives here too.
func (h *Handler) Routes(requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
	})

	return r
}

// Create handles POST /tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	creatorID := middleware.GetActingUser(r.Context())
	t, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayload):
			response.UnprocessableEntity(w, "Payload does not match task type")
		case errors.Is(err, ErrRewardBelowFloor):
			response.UnprocessableEntity(w, "Reward is below the minimum for this task type")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, TaskResponseFromEntity(t))
}

// GetByID handles GET /tasks/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	t, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, TaskResponseFromEntity(t))
}

// List handles GET /tasks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	tasks, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*TaskResponse, len(tasks))
	for i, t := range tasks {
		items[i] = TaskResponseFromEntity(t)
	}

	response.WithMeta(w, items, response.Meta{Total: total, Limit: limit, Offset: offset})
}
