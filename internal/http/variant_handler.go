package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/service"
	"github.com/minhvu/catalogue/internal/validation"
)

type variantHandler struct {
	svc        *Service
	variantSvc service.VariantService
}

func newVariantHandler(svc *Service, variantSvc service.VariantService) *variantHandler {
	return &variantHandler{
		svc:        svc,
		variantSvc: variantSvc,
	}
}

func (h *variantHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.VariantNotFoundErr)
		return
	}

	variant, err := h.variantSvc.GetVariant(r.Context(), id)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, variant)
}

func (h *variantHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.VariantNotFoundErr)
		return
	}

	var patch validation.VariantPatch
	if err := h.svc.decodeJSON(r, &patch); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	variant, err := h.variantSvc.UpdateVariant(r.Context(), id, patch)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, variant)
}

func (h *variantHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.VariantNotFoundErr)
		return
	}

	if err := h.variantSvc.DeleteVariant(r.Context(), id); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
