package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voyago-api/internal/application/booking"
	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/validate"
	"github.com/voyago-api/internal/transport/http/middleware"
)

// bookingPayload pairs the committed booking with the per-channel delivery
// outcomes of its confirmation notifications.
type bookingPayload struct {
	Booking       *domain.Booking   `json:"booking"`
	Notifications map[string]string `json:"notifications,omitempty"`
}

type refundPayload struct {
	Refund        *domain.RefundRecord `json:"refund"`
	Notifications map[string]string    `json:"notifications,omitempty"`
}

// BookingHandler handles booking creation, listing and refunds.
type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler { return &BookingHandler{svc: svc} }

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b, outcomes, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "booking confirmed", bookingPayload{Booking: b, Notifications: outcomes})
}

func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "userId")
	if claims.UserID != userID && claims.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "cannot list another user's bookings")
		return
	}
	bookings, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", bookings)
}

func (h *BookingHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req domain.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rec, outcomes, err := h.svc.Refund(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "refund processed", refundPayload{Refund: rec, Notifications: outcomes})
}
