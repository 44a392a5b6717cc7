package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/service"
)

type categoryHandler struct {
	svc         *Service
	categorySvc service.CategoryService
}

func newCategoryHandler(svc *Service, categorySvc service.CategoryService) *categoryHandler {
	return &categoryHandler{
		svc:         svc,
		categorySvc: categorySvc,
	}
}

func (h *categoryHandler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categorySvc.ListCategories(r.Context())
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, categories)
}

func (h *categoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.CategoryNotFoundErr)
		return
	}

	category, err := h.categorySvc.GetCategory(r.Context(), id)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, category)
}
