package api

import (
	"net/http"

	"github.com/marceloprado/transferdesk/internal/modfilter"
)

// moderationHandler exposes the message link filter.
type moderationHandler struct {
	filter *modfilter.Filter
}

func newModerationHandler(filter *modfilter.Filter) *moderationHandler {
	return &moderationHandler{filter: filter}
}

// checkMessageRequest is the JSON body for checking a message.
type checkMessageRequest struct {
	Content string `json:"content"`
}

// CheckMessage handles POST /api/v1/moderation/check.
func (h *moderationHandler) CheckMessage(w http.ResponseWriter, r *http.Request) {
	var req checkMessageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	verdict := h.filter.Check(req.Content)
	writeJSON(w, http.StatusOK, verdict)
}
