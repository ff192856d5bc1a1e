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

// RecordsHandler handles consumption record endpoints.
type RecordsHandler struct {
	DB *sql.DB
	TZ *time.Location
}

// Create handles POST /api/records: a user takes units of an item.
// Expects a multipart form with item_id, quantity, optional notes, and a
// required proof photo file.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	itemID, err := strconv.ParseInt(r.FormValue("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "quantity must be an integer")
		return
	}

	var photo []byte
	var photoMime string
	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo, photoMime, err = imaging.Process(file)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	record, err := ledger.Take(r.Context(), h.DB, ledger.TakeParams{
		UserID:    claims.UserID,
		ItemID:    itemID,
		Quantity:  quantity,
		Photo:     photo,
		PhotoMime: photoMime,
		Notes:     r.FormValue("notes"),
		Now:       time.Now().In(h.TZ),
	})
	if err != nil {
		ledgerError(w, err)
		return
	}

	slog.Info("item taken", "user", claims.Email, "item", record.ItemName, "quantity", quantity)
	jsonResponse(w, http.StatusCreated, record)
}

// List handles GET /api/records. Admins see all records and may filter by
// user; employees only ever see their own.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	page, limit := parsePage(r)

	filter := store.RecordFilter{
		Search: r.URL.Query().Get("search"),
	}
	filter.ItemID, _ = strconv.ParseInt(r.URL.Query().Get("item_id"), 10, 64)

	requestedUser, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if claims.Role == model.RoleAdmin {
		filter.UserID = requestedUser
	} else {
		if requestedUser != 0 && requestedUser != claims.UserID {
			jsonError(w, http.StatusForbidden, "cannot view other users' records")
			return
		}
		filter.UserID = claims.UserID
	}

	if from := r.URL.Query().Get("from"); from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, h.TZ)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "from must be formatted as YYYY-MM-DD")
			return
		}
		filter.From = d
	}
	if to := r.URL.Query().Get("to"); to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, h.TZ)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "to must be formatted as YYYY-MM-DD")
			return
		}
		// Include the whole end day.
		filter.To = d.Add(24*time.Hour - time.Nanosecond)
	}

	records, total, err := store.ListRecords(r.Context(), h.DB, filter, limit, (page-1)*limit)
	if err != nil {
		slog.Error("failed to list records", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	jsonResponse(w, http.StatusOK, paged(records, page, limit, total))
}

// GetPhoto handles GET /api/records/{id}/photo. Employees can only fetch
// proof photos of their own records.
func (h *RecordsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := store.GetRecord(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get record", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	claims := GetClaims(r.Context())
	if claims.Role != model.RoleAdmin && record.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "cannot view other users' records")
		return
	}

	photo, mime, err := store.GetRecordPhoto(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get record photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Write(photo)
}
