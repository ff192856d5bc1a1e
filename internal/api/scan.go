package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/kantorid/persediaan/internal/ledger"
	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

// ScanHandler resolves scanned item IDs. QR codes printed for items encode
// nothing but the item ID; decoding happens on the client.
type ScanHandler struct {
	DB *sql.DB
	TZ *time.Location
}

type scanRequest struct {
	ItemID int64 `json:"item_id"`
}

type scanResponse struct {
	Item      *model.Item `json:"item"`
	Taken     int         `json:"taken_in_window"`
	Remaining int         `json:"remaining_quota"`
}

// Scan handles POST /api/scan: returns the item with its quota policy and
// the calling user's remaining headroom in the current window, so the client
// can show how much can still be taken before submitting.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, req.ItemID)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	claims := GetClaims(r.Context())
	now := time.Now().In(h.TZ)
	taken, err := ledger.UsageInWindow(r.Context(), h.DB, claims.UserID, item.ID,
		ledger.WindowStart(item.TypePeriod, now))
	if err != nil {
		slog.Error("failed to get window usage", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get usage")
		return
	}

	remaining := item.TypeLimit - taken
	if remaining < 0 {
		remaining = 0
	}

	jsonResponse(w, http.StatusOK, scanResponse{
		Item:      item,
		Taken:     taken,
		Remaining: remaining,
	})
}
