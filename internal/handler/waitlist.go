package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/service"
)

// WaitlistHandler handles waitlist signups and the admin listing.
type WaitlistHandler struct {
	responder
	svc     *service.WaitlistService
	metrics metrics.Recorder
}

// NewWaitlistHandler creates a new WaitlistHandler.
func NewWaitlistHandler(svc *service.WaitlistService, recorder metrics.Recorder, opts Options) *WaitlistHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WaitlistHandler{responder: newResponder(opts), svc: svc, metrics: recorder}
}

// Join handles POST /api/waitlist.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinWaitlistRequest
	if !h.decode(w, r, &req, func() { h.metrics.IncWaitlistSignup(metrics.SignupInvalid) }) {
		return
	}

	entry, err := h.svc.Join(r.Context(), service.JoinWaitlistInput{
		Name:       req.Name,
		Email:      req.Email,
		FamilySize: req.FamilySize,
		Interests:  req.Interests,
	})
	if err != nil {
		if errors.Is(err, service.ErrAlreadyOnWaitlist) {
			h.writeError(w, http.StatusConflict, "ALREADY_ON_WAITLIST", "This email is already on the waitlist")
			return
		}
		h.writeInternalError(w, r, "WAITLIST_FAILED", "Failed to add to waitlist. Please try again.", err)
		return
	}

	h.logger.Info("waitlist_joined",
		slog.String("entry_id", entry.ID),
		slog.String("family_size", entry.FamilySize),
		slog.Bool("has_interests", entry.Interests != nil),
	)

	writeJSON(w, http.StatusCreated, dto.ToJoinWaitlistResponse(entry))
}

// List handles GET /api/waitlist.
func (h *WaitlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		h.writeInternalError(w, r, "WAITLIST_FETCH_FAILED", "Failed to fetch waitlist entries", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWaitlistListResponse(entries))
}
