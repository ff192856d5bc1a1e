package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kantorid/persediaan/internal/ledger"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// ledgerError maps typed ledger failures to HTTP responses with enough
// detail for precise user feedback. Anything unrecognized is an internal
// error and is logged but not exposed.
func ledgerError(w http.ResponseWriter, err error) {
	var validation ledger.ValidationError
	var notFound ledger.NotFoundError
	var insufficient ledger.InsufficientStockError
	var quota ledger.QuotaExceededError
	var negative ledger.NegativeStockError

	switch {
	case errors.As(err, &validation):
		jsonError(w, http.StatusBadRequest, validation.Msg)
	case errors.As(err, &notFound):
		jsonError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &insufficient):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	case errors.As(err, &quota):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":     quota.Error(),
			"limit":     quota.Limit,
			"period":    quota.Period,
			"taken":     quota.Taken,
			"requested": quota.Requested,
		})
	case errors.As(err, &negative):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":   negative.Error(),
			"current": negative.Current,
			"change":  negative.Change,
		})
	default:
		slog.Error("ledger operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
