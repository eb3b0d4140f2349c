package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voyago-api/internal/application/cancellation"
	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/validate"
)

type cancellationPayload struct {
	Request       *domain.CancellationRequest `json:"request"`
	Notifications map[string]string           `json:"notifications,omitempty"`
}

// CancellationHandler handles cancellation-request intake and back-office review.
type CancellationHandler struct {
	svc cancellation.Service
}

func NewCancellationHandler(svc cancellation.Service) *CancellationHandler {
	return &CancellationHandler{svc: svc}
}

func (h *CancellationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	cr, outcomes, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "cancellation request received", cancellationPayload{Request: cr, Notifications: outcomes})
}

func (h *CancellationHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", requests)
}

func (h *CancellationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Resolve(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "cancellation request resolved", nil)
}
