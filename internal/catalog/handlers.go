package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foodxchange/backend-grocer/internal/common"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	Svc             *Service
	DefaultPageSize int
	MaxPageSize     int
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, h.DefaultPageSize, h.MaxPageSize)
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	result, err := h.Svc.ListProducts(r.Context(), query, category, page, perPage)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": result.Items,
		"pagination": common.Pagination{
			Page:       result.Page,
			PerPage:    result.Limit,
			TotalItems: int(result.Total),
		},
	})
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	detail, err := h.Svc.GetProductDetail(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// GetProductOffers handles GET /api/v1/products/{id}/offers.
func (h *Handler) GetProductOffers(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	offers, err := h.Svc.ProductOffers(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": offers})
}

// ListRetailers handles GET /api/v1/retailers.
func (h *Handler) ListRetailers(w http.ResponseWriter, r *http.Request) {
	retailers, err := h.Svc.ListRetailers(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": retailers})
}

// GetRetailer handles GET /api/v1/retailers/{id}.
func (h *Handler) GetRetailer(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	retailer, err := h.Svc.GetRetailer(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": retailer})
}
