package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/voyago-api/internal/application/place"
	"github.com/voyago-api/internal/domain"
	"github.com/voyago-api/internal/pkg/validate"
)

// PlaceHandler handles the destination catalog and its photos.
type PlaceHandler struct {
	svc place.Service
}

func NewPlaceHandler(svc place.Service) *PlaceHandler { return &PlaceHandler{svc: svc} }

func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "place created", p)
}

func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", p)
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	places, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", places)
}

func (h *PlaceHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo field")
		return
	}
	defer f.Close()

	p, err := h.svc.UploadPhoto(r.Context(), chi.URLParam(r, "slug"), header.Filename, f, header.Header.Get("Content-Type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "photo uploaded", p)
}

// Photo redirects to a short-lived presigned URL instead of proxying bytes
// through the API.
func (h *PlaceHandler) Photo(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.PhotoURL(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
