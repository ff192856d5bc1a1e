package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kantorid/persediaan/internal/imaging"
	"github.com/kantorid/persediaan/internal/ledger"
	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

// maxPhotoSize limits uploaded photos to 5 MB.
const maxPhotoSize = 5 << 20

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
	TZ *time.Location
}

type itemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PurchaseDate string `json:"purchase_date"`
	TypeID       int64  `json:"type_id"`
	Stock        int    `json:"stock"`
}

func (req *itemRequest) validate() string {
	if req.Name == "" {
		return "name required"
	}
	if req.TypeID <= 0 {
		return "type_id required"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

func (req *itemRequest) purchaseDate() (*time.Time, string) {
	if req.PurchaseDate == "" {
		return nil, ""
	}
	d, err := time.Parse("2006-01-02", req.PurchaseDate)
	if err != nil {
		return nil, "purchase_date must be formatted as YYYY-MM-DD"
	}
	return &d, ""
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r)
	search := r.URL.Query().Get("search")
	typeID, _ := strconv.ParseInt(r.URL.Query().Get("type_id"), 10, 64)

	items, total, err := store.ListItems(r.Context(), h.DB, search, typeID, limit, (page-1)*limit)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, paged(items, page, limit, total))
}

// Create handles POST /api/items. A nonzero initial stock is applied through
// the adjustment ledger so it shows up in the item's audit history.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	purchaseDate, msg := req.purchaseDate()
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	t, err := store.GetType(r.Context(), h.DB, req.TypeID)
	if err != nil {
		slog.Error("failed to get consumption type", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if t == nil || t.DeletedAt != nil {
		jsonError(w, http.StatusBadRequest, "consumption type not found")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, req.Name, req.Description, purchaseDate, req.TypeID)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	claims := GetClaims(r.Context())

	if req.Stock > 0 {
		_, err := ledger.Adjust(r.Context(), h.DB, ledger.AdjustParams{
			ItemID:       item.ID,
			Change:       req.Stock,
			Reason:       ledger.ReasonInitialStock,
			ActingUserID: claims.UserID,
			Now:          time.Now().In(h.TZ),
		})
		if err != nil {
			ledgerError(w, err)
			return
		}
		item, _ = store.GetItem(r.Context(), h.DB, item.ID)
	}

	slog.Info("item created", "user", claims.Email, "item", req.Name, "stock", req.Stock)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. A stock edit is converted into a
// ledger adjustment of the delta; nothing writes items.stock directly.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	purchaseDate, msg := req.purchaseDate()
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if req.TypeID != item.TypeID {
		t, err := store.GetType(r.Context(), h.DB, req.TypeID)
		if err != nil || t == nil || t.DeletedAt != nil {
			jsonError(w, http.StatusBadRequest, "consumption type not found")
			return
		}
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, req.Name, req.Description, purchaseDate, req.TypeID); err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	claims := GetClaims(r.Context())

	if delta := req.Stock - item.Stock; delta != 0 {
		_, err := ledger.Adjust(r.Context(), h.DB, ledger.AdjustParams{
			ItemID:       id,
			Change:       delta,
			Reason:       ledger.ReasonManualEdit,
			ActingUserID: claims.UserID,
			Now:          time.Now().In(h.TZ),
		})
		if err != nil {
			ledgerError(w, err)
			return
		}
	}

	slog.Info("item updated", "user", claims.Email, "item", req.Name)
	updated, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil || item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item deleted", "user", claims.Email, "item", item.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil || item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	data, mime, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemPhoto(r.Context(), h.DB, id, data, mime); err != nil {
		slog.Error("failed to set item photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	photo, mime, err := store.GetItemPhoto(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if len(photo) == 0 {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Write(photo)
}

// ListAdjustments handles GET /api/items/{id}/adjustments.
func (h *ItemsHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil || item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	page, limit := parsePage(r)
	adjustments, total, err := store.ListAdjustments(r.Context(), h.DB, id, limit, (page-1)*limit)
	if err != nil {
		slog.Error("failed to list adjustments", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list adjustments")
		return
	}
	if adjustments == nil {
		adjustments = []model.Adjustment{}
	}
	jsonResponse(w, http.StatusOK, paged(adjustments, page, limit, total))
}
