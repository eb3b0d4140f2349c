package handler

import (
	"encoding/json"
	"net/http"

	"github.com/voyago-api/internal/application/contact"
	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/validate"
)

type contactPayload struct {
	Contact       *domain.ContactSubmission `json:"contact"`
	Notifications map[string]string         `json:"notifications,omitempty"`
}

// ContactHandler handles contact-form submissions.
type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler { return &ContactHandler{svc: svc} }

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	sub, outcomes, err := h.svc.Submit(r.Context(), req, clientIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "message received", contactPayload{Contact: sub, Notifications: outcomes})
}
