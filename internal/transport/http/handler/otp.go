package handler

import (
	"encoding/json"
	"net/http"

	"github.com/voyago-api/internal/application/otp"
	"github.com/voyago-api/internal/pkg/validate"
)

// OTPHandler handles passcode issuance and verification for the pre-signup
// email check.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req otp.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Issue(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "OTP sent to your email", nil)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req otp.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Verify(r.Context(), req.Email, req.OTP); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "email verified", nil)
}
