package shoppinglist

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foodxchange/backend-grocer/internal/common"
)

// Handler exposes shopping list HTTP endpoints.
type Handler struct {
	Svc *Service
}

// userID resolves the list owner from the X-User-ID header, falling back to
// the user query parameter.
func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("user"))
	}
	if id == "" {
		return "", common.BadRequest("user", "user identifier is required", nil)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return common.PathID(chi.URLParam(r, name))
}

// CreateList handles POST /api/v1/lists.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var in CreateListInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, r, err)
		return
	}
	list, err := h.Svc.CreateList(r.Context(), owner, in)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": list})
}

// Lists handles GET /api/v1/lists.
func (h *Handler) Lists(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	lists, err := h.Svc.Lists(r.Context(), owner)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": lists})
}

// GetList handles GET /api/v1/lists/{id}.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	detail, err := h.Svc.GetList(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// UpdateList handles PATCH /api/v1/lists/{id}.
func (h *Handler) UpdateList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var in UpdateListInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, r, err)
		return
	}
	list, err := h.Svc.UpdateList(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}

// DeleteList handles DELETE /api/v1/lists/{id}.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := h.Svc.DeleteList(r.Context(), id); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/v1/lists/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var in AddItemInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, r, err)
		return
	}
	item, err := h.Svc.AddItem(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

// UpdateItem handles PATCH /api/v1/lists/{id}/items/{itemID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var in UpdateItemInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, r, err)
		return
	}
	item, err := h.Svc.UpdateItem(r.Context(), id, itemID, in)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": item})
}

// RemoveItem handles DELETE /api/v1/lists/{id}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), id, itemID); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearChecked handles POST /api/v1/lists/{id}/clear-checked.
func (h *Handler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	removed, err := h.Svc.ClearChecked(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]int64{"removed_items": removed}})
}

// UncheckAll handles POST /api/v1/lists/{id}/uncheck-all.
func (h *Handler) UncheckAll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	updated, err := h.Svc.UncheckAll(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]int64{"unchecked_items": updated}})
}
