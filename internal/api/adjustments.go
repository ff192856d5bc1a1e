package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/kantorid/persediaan/internal/ledger"
)

// AdjustmentsHandler handles admin stock correction endpoints.
type AdjustmentsHandler struct {
	DB *sql.DB
	TZ *time.Location
}

type adjustmentRequest struct {
	ItemID int64  `json:"item_id"`
	Change int    `json:"change"`
	Reason string `json:"reason"`
}

// Create handles POST /api/adjustments.
func (h *AdjustmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	claims := GetClaims(r.Context())

	adjustment, err := ledger.Adjust(r.Context(), h.DB, ledger.AdjustParams{
		ItemID:       req.ItemID,
		Change:       req.Change,
		Reason:       req.Reason,
		ActingUserID: claims.UserID,
		Now:          time.Now().In(h.TZ),
	})
	if err != nil {
		ledgerError(w, err)
		return
	}

	slog.Info("stock adjusted", "user", claims.Email,
		"item", adjustment.ItemName, "change", req.Change, "reason", adjustment.Reason)
	jsonResponse(w, http.StatusCreated, adjustment)
}
