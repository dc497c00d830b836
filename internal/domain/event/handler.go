package event

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/pkg/response"
)

// SecretHeader carries the shared secret the offerwall provider was issued.
const SecretHeader = "X-Offerwall-Secret"

// Handler terminates the provider webhook. Responses are plain text, one
// token per outcome class, which is what the provider's delivery worker
// expects.
type Handler struct {
	service *Service
	secret  string
}

// NewHandler creates event handler
func NewHandler(service *Service, secret string) *Handler {
	return &Handler{service: service, secret: secret}
}

// Routes returns webhook routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/offerwall", h.Receive)
	return r
}

// Receive handles POST /webhooks/offerwall
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	// An unset secret rejects everything rather than letting everything in.
	given := r.Header.Get(SecretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
		response.Text(w, http.StatusForbidden, "forbidden")
		return
	}

	var in Inbound
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Text(w, http.StatusBadRequest, "bad payload")
		return
	}
	in.EventID = strings.TrimSpace(in.EventID)
	in.Type = Type(strings.ToLower(strings.TrimSpace(string(in.Type))))

	if in.EventID == "" || in.UserID <= 0 || !in.Type.Valid() || (in.Reward != nil && *in.Reward < 0) {
		response.Text(w, http.StatusBadRequest, "bad payload")
		return
	}

	outcome, err := h.service.Process(r.Context(), in)
	if err != nil {
		log.Error().
			Err(err).
			Str("event_id", in.EventID).
			Int64("user_id", in.UserID).
			Msg("offerwall event failed")
		response.Text(w, http.StatusInternalServerError, "error")
		return
	}

	response.Text(w, http.StatusOK, string(outcome))
}
