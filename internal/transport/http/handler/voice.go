package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voyago-api/internal/application/voice"
	"github.com/voyago-api/internal/pkg/validate"
)

// VoiceHandler handles outbound call placement and the voice-script callback.
type VoiceHandler struct {
	svc voice.Service
}

func NewVoiceHandler(svc voice.Service) *VoiceHandler { return &VoiceHandler{svc: svc} }

func (h *VoiceHandler) CallUser(w http.ResponseWriter, r *http.Request) {
	var req voice.CallUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	sid, err := h.svc.CallUser(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "call placed", map[string]string{"call_sid": sid})
}

// Twiml serves the spoken script as TwiML. The telephony provider fetches it
// mid-call, so the response is XML rather than the JSON envelope, and an
// unknown place still returns a speakable document.
func (h *VoiceHandler) Twiml(w http.ResponseWriter, r *http.Request) {
	script, err := h.svc.Script(r.Context(), chi.URLParam(r, "placeName"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not build voice script")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(script)
}
