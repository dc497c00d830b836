package assignment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/storage"
	"github.com/ameropro/stars-api/internal/pkg/validator"
)

// PresignProofRequest for POST /uploads/proof
type PresignProofRequest struct {
	Filename    string `json:"filename" validate:"required,max=200"`
	ContentType string `json:"content_type" validate:"required,max=100"`
	Size        int64  `json:"size" validate:"required,gt=0"`
}

// ProofUploadHandler hands out presigned URLs for reaction proof uploads.
// The proof itself goes straight to the blob store; Submit later verifies
// the key exists.
type ProofUploadHandler struct {
	store *storage.ProofStore
}

// NewProofUploadHandler creates proof upload handler. store may be nil.
func NewProofUploadHandler(store *storage.ProofStore) *ProofUploadHandler {
	return &ProofUploadHandler{store: store}
}

// Routes returns proof upload routes
func (h *ProofUploadHandler) Routes(requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/proof", h.Presign)
	})

	return r
}

// Presign handles POST /uploads/proof
func (h *ProofUploadHandler) Presign(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Proof uploads are not configured")
		return
	}

	var req PresignProofRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetActingUser(r.Context())
	result, err := h.store.PresignPut(r.Context(), userID, req.Filename, req.ContentType, req.Size)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, result)
}
