package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

// TypesHandler handles consumption type CRUD endpoints.
type TypesHandler struct {
	DB *sql.DB
}

type typeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Limit       int    `json:"limit"`
	Period      string `json:"period"`
}

func (req *typeRequest) validate() string {
	if req.Name == "" {
		return "name required"
	}
	if req.Limit <= 0 {
		return "limit must be a positive integer"
	}
	if !model.ValidPeriod(req.Period) {
		return "period must be 'weekly' or 'monthly'"
	}
	return ""
}

// List handles GET /api/types.
func (h *TypesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)
	search := r.URL.Query().Get("search")

	types, total, err := store.ListTypes(r.Context(), h.DB, search, limit, (page-1)*limit)
	if err != nil {
		slog.Error("failed to list consumption types", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list consumption types")
		return
	}
	if types == nil {
		types = []model.ConsumptionType{}
	}
	jsonResponse(w, http.StatusOK, paged(types, page, limit, total))
}

// Create handles POST /api/types.
func (h *TypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := store.CreateType(r.Context(), h.DB, req.Name, req.Description, req.Limit, req.Period)
	if err != nil {
		slog.Error("failed to create consumption type", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create consumption type")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("consumption type created", "user", claims.Email,
		"type", req.Name, "limit", req.Limit, "period", req.Period)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/types/{id}.
func (h *TypesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	t, err := store.GetType(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get consumption type", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get consumption type")
		return
	}
	if t == nil || t.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "consumption type not found")
		return
	}

	jsonResponse(w, http.StatusOK, t)
}

// Update handles PUT /api/types/{id}.
func (h *TypesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	var req typeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := store.GetType(r.Context(), h.DB, id)
	if err != nil || t == nil || t.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "consumption type not found")
		return
	}

	if err := store.UpdateType(r.Context(), h.DB, id, req.Name, req.Description, req.Limit, req.Period); err != nil {
		slog.Error("failed to update consumption type", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update consumption type")
		return
	}

	updated, _ := store.GetType(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/types/{id}. Deletion is refused while active
// items still reference the type, so their quota policy is never orphaned.
func (h *TypesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid type id")
		return
	}

	t, err := store.GetType(r.Context(), h.DB, id)
	if err != nil || t == nil || t.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "consumption type not found")
		return
	}

	hasItems, err := store.TypeHasActiveItems(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to check type items", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if hasItems {
		jsonError(w, http.StatusConflict, "consumption type still has items and cannot be deleted")
		return
	}

	if err := store.DeleteType(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete consumption type", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete consumption type")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("consumption type deleted", "user", claims.Email, "type", t.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "consumption type deleted"})
}
