package assignment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/domain/task"
	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// Handler handles assignment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates assignment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the assignment router
func (h *Handler) Routes(requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireUser)

	r.Get("/", h.ListMine)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/review", h.Review)

	return r
}

// TaskAssignmentRoutes returns routes mounted at /tasks/{taskID}/assignments
func (h *Handler) TaskAssignmentRoutes(requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireUser)

	r.Post("/", h.Take)

	return r
}

// Take handles POST /tasks/{taskID}/assignments
func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	userID := middleware.GetActingUser(r.Context())
	a, err := h.service.Take(r.Context(), taskID, userID)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrNotFound):
			response.NotFound(w, "Task not found")
		case errors.Is(err, ErrAlreadyActive):
			response.Conflict(w, "An active assignment already exists for this task")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, AssignmentResponseFromEntity(a))
}

// Complete handles POST /assignments/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid assignment ID")
		return
	}

	userID := middleware.GetActingUser(r.Context())
	a, err := h.service.Complete(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, AssignmentResponseFromEntity(a))
}

// Submit handles POST /assignments/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid assignment ID")
		return
	}

	var req SubmitRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetActingUser(r.Context())
	a, err := h.service.Submit(r.Context(), id, userID, req.Proof)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, AssignmentResponseFromEntity(a))
}

// Review handles POST /assignments/{id}/review
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid assignment ID")
		return
	}

	var req ReviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	reviewerID := middleware.GetActingUser(r.Context())
	a, err := h.service.Review(r.Context(), id, reviewerID, Verdict(req.Verdict), req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, AssignmentResponseFromEntity(a))
}

// ListMine handles GET /assignments
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	userID := middleware.GetActingUser(r.Context())
	assignments, total, err := h.service.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*AssignmentResponse, len(assignments))
	for i, a := range assignments {
		items[i] = AssignmentResponseFromEntity(a)
	}

	response.WithMeta(w, items, response.Meta{Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, task.ErrNotFound):
		response.NotFound(w, "Assignment not found")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, "You can only manage your own assignments")
	case errors.Is(err, ErrNotAllowed):
		response.Forbidden(w, "Only the task creator or an admin can review")
	case errors.Is(err, ErrNotSubscribed):
		response.UnprocessableEntity(w, "Channel membership not confirmed")
	case errors.Is(err, ErrProofRequired):
		response.UnprocessableEntity(w, "This task type requires proof via submit")
	case errors.Is(err, ErrProofMissing):
		response.UnprocessableEntity(w, "Proof not found in storage")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "Operation not allowed in the current status")
	case errors.Is(err, ErrAlreadyPaid):
		response.Conflict(w, "Assignment reward already paid")
	default:
		response.InternalError(w)
	}
}
