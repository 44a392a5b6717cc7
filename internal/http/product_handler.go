package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhvu/catalogue/internal/apperr"
	"github.com/minhvu/catalogue/internal/repository"
	"github.com/minhvu/catalogue/internal/service"
	"github.com/minhvu/catalogue/internal/validation"
)

type productHandler struct {
	svc        *Service
	productSvc service.ProductService
}

func newProductHandler(svc *Service, productSvc service.ProductService) *productHandler {
	return &productHandler{
		svc:        svc,
		productSvc: productSvc,
	}
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.ListProductsFilter{
		Search: r.URL.Query().Get("search"),
	}
	// An unparseable category_id filter matches nothing it could mean, so
	// it is ignored rather than rejected.
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CategoryID = &id
		}
	}

	summaries, err := h.productSvc.ListProducts(r.Context(), filter)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, summaries)
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload validation.ProductCreate
	if err := h.svc.decodeJSON(r, &payload); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	detail, err := h.productSvc.CreateProduct(r.Context(), payload)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusCreated, detail)
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.ProductNotFoundErr)
		return
	}

	detail, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, detail)
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.ProductNotFoundErr)
		return
	}

	var patch validation.ProductPatch
	if err := h.svc.decodeJSON(r, &patch); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	detail, err := h.productSvc.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, detail)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.ProductNotFoundErr)
		return
	}

	if err := h.productSvc.SoftDeleteProduct(r.Context(), id); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (h *productHandler) addVariant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.svc.respondError(w, r, apperr.ProductNotFoundErr)
		return
	}

	var payload validation.VariantCreate
	if err := h.svc.decodeJSON(r, &payload); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	variant, err := h.productSvc.AddVariant(r.Context(), id, payload)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusCreated, variant)
}
