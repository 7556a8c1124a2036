package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marceloprado/transferdesk/internal/engine"
	"github.com/marceloprado/transferdesk/internal/ledger"
	"github.com/marceloprado/transferdesk/internal/metrics"
	"github.com/marceloprado/transferdesk/internal/offer"
	"github.com/marceloprado/transferdesk/internal/ratelimit"
)

// TransferService is the engine surface the HTTP handlers depend on.
type TransferService interface {
	ProposeOffer(ctx context.Context, representativeID, targetID string) (offer.Offer, error)
	ResolveOffer(ctx context.Context, targetID string, decision engine.Decision, actorID string) (*ledger.Record, error)
	DismissMember(ctx context.Context, representativeID, targetID string) (*ledger.Record, error)
	SelfRelease(ctx context.Context, memberID string) (*ledger.Record, error)
	History(ctx context.Context) ([]ledger.Record, error)
}

// transfersHandler groups the transfer-related HTTP handlers.
type transfersHandler struct {
	svc     TransferService
	limiter *ratelimit.Limiter
	metrics *metrics.Metrics
}

func newTransfersHandler(svc TransferService, limiter *ratelimit.Limiter, m *metrics.Metrics) *transfersHandler {
	return &transfersHandler{
		svc:     svc,
		limiter: limiter,
		metrics: m,
	}
}

// proposeOfferRequest is the JSON body for proposing an offer.
type proposeOfferRequest struct {
	RepresentativeID string `json:"representative_id"`
	TargetID         string `json:"target_id"`
}

// offerResponse is the JSON shape of a pending offer.
type offerResponse struct {
	TargetUserID     string    `json:"target_user_id"`
	RepresentativeID string    `json:"representative_id"`
	TeamName         string    `json:"team_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProposeOffer handles POST /api/v1/offers.
func (h *transfersHandler) ProposeOffer(w http.ResponseWriter, r *http.Request) {
	var req proposeOfferRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.RepresentativeID == "" || req.TargetID == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "representative_id and target_id are required")
		return
	}

	if !h.limiter.Allow(req.RepresentativeID) {
		h.metrics.RateLimitRejectionsTotal.Inc()
		limit, remaining, resetAt := h.limiter.Status(req.RepresentativeID)
		setRateLimitHeaders(w, limit, remaining, resetAt)
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many offers; slow down")
		return
	}

	o, err := h.svc.ProposeOffer(r.Context(), req.RepresentativeID, req.TargetID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	auditLog(r, "propose_offer", "offer", o.TargetUserID,
		"representative_id", o.RepresentativeID, "team", o.TeamName)

	writeJSON(w, http.StatusCreated, offerResponse{
		TargetUserID:     o.TargetUserID,
		RepresentativeID: o.RepresentativeID,
		TeamName:         o.TeamName,
		CreatedAt:        o.CreatedAt,
	})
}

// resolveOfferRequest is the JSON body for resolving an offer.
type resolveOfferRequest struct {
	ActorID  string `json:"actor_id"`
	Decision string `json:"decision"` // "accept" or "decline"
}

// ResolveOffer handles POST /api/v1/offers/{userID}/resolve.
func (h *transfersHandler) ResolveOffer(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "user id is required")
		return
	}

	var req resolveOfferRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}

	decision := engine.Decision(req.Decision)
	if decision != engine.DecisionAccept && decision != engine.DecisionDecline {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "decision must be accept or decline")
		return
	}
	if req.ActorID == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "actor_id is required")
		return
	}

	rec, err := h.svc.ResolveOffer(r.Context(), userID, decision, req.ActorID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	auditLog(r, "resolve_offer", "offer", userID, "decision", string(decision))

	if rec == nil {
		// Declined: nothing was recorded.
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"decision": string(decision),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"decision": string(decision),
		"record":   rec,
	})
}

// actorRequest is the JSON body for dismissals.
type actorRequest struct {
	RepresentativeID string `json:"representative_id"`
}

// DismissMember handles POST /api/v1/members/{userID}/dismiss.
func (h *transfersHandler) DismissMember(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "user id is required")
		return
	}

	var req actorRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.RepresentativeID == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "representative_id is required")
		return
	}

	rec, err := h.svc.DismissMember(r.Context(), req.RepresentativeID, userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	auditLog(r, "dismiss_member", "member", userID,
		"representative_id", req.RepresentativeID, "team", rec.TeamName)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record": rec,
	})
}

// SelfRelease handles POST /api/v1/members/{userID}/release.
func (h *transfersHandler) SelfRelease(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "user id is required")
		return
	}

	rec, err := h.svc.SelfRelease(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	auditLog(r, "self_release", "member", userID, "team", rec.TeamName)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record": rec,
	})
}

// ListTransfers handles GET /api/v1/transfers.
func (h *transfersHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read transfer history")
		return
	}

	if records == nil {
		records = []ledger.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transfers": records,
	})
}

func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}
