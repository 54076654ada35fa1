// Package httpjson writes JSON responses the way every handler in this
// app does: a body with a status code, or an {"error": ...} envelope
// derived from an apperr status.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/limits"
	"go.uber.org/zap"
)

// Respond writes v as JSON with the given status. A nil v writes just the
// status (used for 204s).
func Respond(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error translates err into the declared status and an error envelope.
// Untyped errors become a generic 500; the real cause goes to the log,
// never to the client.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	Respond(w, status, map[string]string{"error": apperr.Message(err)})
}

// Decode parses the request body into dst, mapping malformed or
// oversized JSON to a BadRequest apperr.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}
