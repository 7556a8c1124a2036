package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/marceloprado/transferdesk/internal/engine"
	"github.com/marceloprado/transferdesk/internal/offer"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// writeEngineError maps a transfer engine error to its HTTP representation.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		mutErr  *engine.MutationError
		delErr  *engine.DeliveryError
		persErr *engine.PersistenceError
	)

	switch {
	case errors.Is(err, engine.ErrNotRepresentative):
		writeError(w, http.StatusForbidden, "not_representative", "caller does not represent any team")
	case errors.Is(err, engine.ErrRepresentativeNotOnTeam):
		writeError(w, http.StatusForbidden, "representative_not_on_team", "representative does not hold the team role")
	case errors.Is(err, engine.ErrNotOfferTarget):
		writeError(w, http.StatusForbidden, "not_offer_target", "only the invited user may resolve the offer")
	case errors.Is(err, engine.ErrTargetIsBot):
		writeError(w, http.StatusUnprocessableEntity, "invalid_target", "the automation account cannot be hired")
	case errors.Is(err, engine.ErrNotTeamMember):
		writeError(w, http.StatusUnprocessableEntity, "not_team_member", "target is not on the representative's team")
	case errors.Is(err, engine.ErrNotEmployed):
		writeError(w, http.StatusUnprocessableEntity, "not_employed", "member does not play for any team")
	case errors.Is(err, engine.ErrAlreadyEmployed):
		writeError(w, http.StatusConflict, "already_employed", "target already plays for a team")
	case errors.Is(err, offer.ErrDuplicate):
		writeError(w, http.StatusConflict, "offer_exists", "target already has a pending offer")
	case errors.Is(err, offer.ErrNotFound):
		writeError(w, http.StatusNotFound, "offer_not_found", "no pending offer for this user")
	case errors.As(err, &delErr):
		writeError(w, http.StatusBadGateway, "delivery_failed", "could not deliver the offer prompt")
	case errors.As(err, &mutErr):
		writeError(w, http.StatusBadGateway, "platform_error", "role change failed on the chat platform")
	case errors.As(err, &persErr):
		writeError(w, http.StatusInternalServerError, "persistence_error", "failed to record the transfer")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
