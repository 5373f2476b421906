package compare

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodxchange/backend-grocer/internal/common"
)

// Handler exposes the comparison endpoint.
type Handler struct {
	Svc *Service
}

// Compare handles GET /api/v1/lists/{id}/compare. The three outcomes a client
// must distinguish map to distinct statuses: ranked list (200), unknown list
// (404), and no retailer stocking anything (422 NO_RETAILERS).
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "comparison service not configured", nil)
		return
	}
	listID, err := common.PathID(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	result, err := h.Svc.Compare(r.Context(), listID)
	if err != nil {
		switch {
		case errors.Is(err, ErrListNotFound):
			common.WriteError(w, r, common.NotFound("shopping list not found", err))
		case errors.Is(err, ErrEmptyComparison):
			common.JSONError(w, http.StatusUnprocessableEntity, "NO_RETAILERS", "no retailer has any of these items", nil)
		default:
			common.WriteError(w, r, err)
		}
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
